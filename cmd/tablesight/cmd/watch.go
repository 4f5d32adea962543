package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tablesight/tablesight/internal/recognition"
	"github.com/tablesight/tablesight/internal/state"
	"github.com/tablesight/tablesight/internal/textrec"
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a capture source and render the table state live",
	Long: `Continuously recognize frames from the capture source and render
the table state in the terminal, refreshed in place.

Examples:
  tablesight watch --profile room.yaml --path table.png
  tablesight watch --profile room.yaml --source dir --path frames/ --interval 250ms`,
	SilenceUsage: true,
	RunE:         runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyCaptureFlags(cmd, cfg)

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize recognition: %w", err)
	}
	defer func() {
		if err := orch.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing recognition: %v\n", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = orch.Run(ctx) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	area, err := pterm.DefaultArea.Start()
	if err != nil {
		return fmt.Errorf("failed to start terminal area: %w", err)
	}
	defer func() { _ = area.Stop() }()
	area.Update(pterm.Cyan("Waiting for the first frame ..."))

	ticker := time.NewTicker(orch.Interval())
	defer ticker.Stop()

	var lastRendered *recognition.Frame
	for {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig)
			return nil
		case <-ticker.C:
			frame, ok := orch.Peek()
			if !ok || frame == lastRendered {
				continue
			}
			lastRendered = frame
			area.Update(renderTable(frame))
		}
	}
}

// renderTable draws one frame as boxed panels: the board with street and
// pot, the hero hand, and the raw text zones.
func renderTable(f *recognition.Frame) string {
	gs := state.FromFrame(f)
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)

	board := ""
	for _, c := range gs.Board {
		board += c.String() + " - "
	}
	boardData := pterm.BgGreen.Sprint("\n"+board+string(gs.Street)+"\n") +
		pterm.Sprintfln("Pot: %.2f", gs.Pot)
	boardPanel := pterm.Panel{
		Data: pbox.WithTitle(pterm.LightGreen("|BOARD|")).WithTitleTopCenter().Sprintf("%s", boardData),
	}

	hand := "--"
	if len(gs.Hero) > 0 {
		hand = ""
		for i, c := range gs.Hero {
			if i > 0 {
				hand += " - "
			}
			hand += c.String()
		}
	}
	heroData := pterm.BgGreen.Sprintf("%s", hand)
	if gs.HandClass != "" {
		heroData += pterm.Sprintfln("\n%s", pterm.LightCyan(gs.HandClass))
	}
	heroPanel := pterm.Panel{
		Data: pbox.WithTitle(pterm.LightCyan("|HERO|")).WithTitleTopCenter().Sprintf("%s", heroData),
	}

	zoneData := ""
	for _, name := range sortedZones(f.TextResults) {
		r := f.TextResults[name]
		line := pterm.Sprintfln("%s: %s (%.2f)", name, r.Text, r.Confidence)
		if !r.IsValid {
			line = pterm.LightRed(line)
		}
		zoneData += line
	}
	if zoneData == "" {
		zoneData = "no text zones"
	}
	zonePanel := pterm.Panel{
		Data: pbox.WithTitle(pterm.LightYellow("|ZONES|")).WithTitleTopCenter().Sprintf("%s", zoneData),
	}

	out, err := pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		{boardPanel},
		{heroPanel, zonePanel},
	}).Srender()
	if err != nil {
		return f.Summary()
	}
	return out
}

func sortedZones(results map[string]textrec.TextResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	rootCmd.AddCommand(watchCmd)

	addCaptureFlags(watchCmd)
}
