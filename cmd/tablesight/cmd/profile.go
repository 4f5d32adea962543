package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tablesight/tablesight/internal/layout"
)

// profileCmd groups the room profile inspection commands.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect room calibration profiles",
	Long: `Validate and display room calibration profiles.

Examples:
  tablesight profile validate room.yaml
  tablesight profile show room.yaml --format json`,
}

var profileValidateCmd = &cobra.Command{
	Use:          "validate <file>",
	Short:        "Validate a room profile",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := layout.LoadProfile(args[0])
		if err != nil {
			return fmt.Errorf("profile %s: %w", args[0], err)
		}

		cardCount := len(p.CardRegions())
		textCount := len(p.TextRegions())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile %s is valid\n", args[0])
		fmt.Fprintf(out, "  name:    %s\n", p.Name)
		fmt.Fprintf(out, "  regions: %d (%d card, %d text)\n", len(p.Regions), cardCount, textCount)
		if p.ClientSize != nil {
			fmt.Fprintf(out, "  client:  %dx%d\n", p.ClientSize.Width, p.ClientSize.Height)
		}
		return nil
	},
}

// regionSummary is one region in profile show output.
type regionSummary struct {
	Name      string            `json:"name"`
	Kind      layout.RegionKind `json:"kind"`
	Rect      layout.RectNorm   `json:"rect"`
	Anchor    string            `json:"anchor,omitempty"`
	Semantics layout.Semantics  `json:"semantics,omitempty"`
}

// profileSummary is the JSON document emitted by profile show.
type profileSummary struct {
	Name       string          `json:"name"`
	ClientSize *layout.Size    `json:"client_size,omitempty"`
	Anchors    []string        `json:"anchors,omitempty"`
	Regions    []regionSummary `json:"regions"`
}

var profileShowCmd = &cobra.Command{
	Use:          "show <file>",
	Short:        "Display the regions of a room profile",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := layout.LoadProfile(args[0])
		if err != nil {
			return fmt.Errorf("profile %s: %w", args[0], err)
		}

		summary := summarizeProfile(p)
		out := cmd.OutOrStdout()

		format, _ := cmd.Flags().GetString("format")
		if format == outputFormatJSON {
			bts, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(out, string(bts))
			return nil
		}

		fmt.Fprintf(out, "Profile: %s\n", summary.Name)
		if summary.ClientSize != nil {
			fmt.Fprintf(out, "Reference size: %dx%d\n", summary.ClientSize.Width, summary.ClientSize.Height)
		}
		if len(summary.Anchors) > 0 {
			fmt.Fprintf(out, "Anchors: %d\n", len(summary.Anchors))
		}
		fmt.Fprintln(out, "Regions:")
		for _, r := range summary.Regions {
			line := fmt.Sprintf("  %-16s %-4s (%.3f, %.3f) %.3fx%.3f", r.Name, r.Kind, r.Rect.X, r.Rect.Y, r.Rect.W, r.Rect.H)
			if r.Anchor != "" {
				line += fmt.Sprintf(" @%s", r.Anchor)
			}
			if r.Semantics != "" && r.Semantics != layout.SemanticsGeneric {
				line += fmt.Sprintf(" [%s]", r.Semantics)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

// summarizeProfile flattens a profile for display: card regions in slot
// order first, then text regions by name.
func summarizeProfile(p *layout.Profile) profileSummary {
	s := profileSummary{Name: p.Name, ClientSize: p.ClientSize}
	for name := range p.Anchors {
		s.Anchors = append(s.Anchors, name)
	}
	sort.Strings(s.Anchors)

	for _, r := range p.CardRegions() {
		s.Regions = append(s.Regions, summarizeRegion(r))
	}
	texts := p.TextRegions()
	sort.Slice(texts, func(i, j int) bool { return texts[i].Name < texts[j].Name })
	for _, r := range texts {
		s.Regions = append(s.Regions, summarizeRegion(r))
	}
	return s
}

func summarizeRegion(r layout.Region) regionSummary {
	rs := regionSummary{Name: r.Name, Kind: r.Kind, Rect: r.Rect, Anchor: r.Base.Anchor}
	if r.Kind == layout.KindText {
		rs.Semantics = r.Hint().Semantics
	}
	return rs
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileValidateCmd)
	profileCmd.AddCommand(profileShowCmd)

	profileShowCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
}
