package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/recognition"
	"github.com/tablesight/tablesight/internal/state"
	"github.com/tablesight/tablesight/internal/templates"
	"github.com/tablesight/tablesight/internal/textrec"
	"github.com/tablesight/tablesight/internal/utils"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// recognizeCmd represents the recognize command.
var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>...",
	Short: "Recognize cards and text zones in captured table frames",
	Long: `Run card and text recognition over one or more table screenshots.

Supported formats: JPEG, PNG, BMP

Examples:
  tablesight recognize table.png --profile room.yaml
  tablesight recognize hand/*.png --format json
  tablesight recognize table.png --cards-only --output result.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runRecognize,
}

// frameReport is the JSON document emitted per input file.
type frameReport struct {
	File  string             `json:"file"`
	Frame *recognition.Frame `json:"frame"`
	State state.GameState    `json:"state"`
}

func runRecognize(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	// Get configuration (includes CLI flags, config file, env vars, and defaults)
	cfg := GetConfig()

	cardsOnly, _ := cmd.Flags().GetBool("cards-only")
	textOnly, _ := cmd.Flags().GetBool("text-only")
	if cardsOnly && textOnly {
		return errors.New("--cards-only and --text-only are mutually exclusive")
	}

	format := cfg.Output.Format
	if format != outputFormatText && format != outputFormatJSON {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			format, strings.Join([]string{outputFormatText, outputFormatJSON}, ", "))
	}

	profile, err := loadConfiguredProfile(cfg)
	if err != nil {
		return err
	}

	var cardRec *cards.Recognizer
	if !textOnly {
		cardCfg := cfg.ToCardsConfig()
		store, err := templates.LoadDir(cfg.ResolveTemplatesDir(), cardCfg.CanonicalSize)
		if err != nil {
			return fmt.Errorf("load card templates: %w", err)
		}
		cardRec, err = cards.NewRecognizer(cardCfg, store)
		if err != nil {
			return fmt.Errorf("failed to initialize card recognizer: %w", err)
		}
	}

	var textRec *textrec.Recognizer
	if !cardsOnly {
		textRec, err = textrec.NewRecognizer(cfg.ToTextConfig(), nil)
		if err != nil {
			return fmt.Errorf("failed to initialize text recognizer: %w", err)
		}
		defer func() {
			if err := textRec.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing text recognizer: %v\n", err)
			}
		}()
	}

	// One tracker across all inputs so a multi-file sequence walks the
	// streets the same way a live capture would.
	tracker := recognition.NewStreetTracker()

	var outputs []string
	for _, pth := range args {
		if !utils.IsSupportedImage(pth) {
			return fmt.Errorf("unsupported image format: %s", pth)
		}
		img, err := utils.LoadImage(pth)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", pth, err)
		}

		frame := &recognition.Frame{}
		if cardRec != nil {
			res, err := cardRec.RecognizeAll(img, profile)
			if err != nil {
				return fmt.Errorf("card recognition failed for %s: %w", pth, err)
			}
			frame.HeroCards = res.Hero
			frame.BoardCards = res.Board
			frame.Street = tracker.Observe(res.BoardCount())
		}
		if textRec != nil {
			zones, err := textRec.RecognizeZones(img, profile)
			if err != nil {
				return fmt.Errorf("text recognition failed for %s: %w", pth, err)
			}
			frame.TextResults = zones
		}

		gs := state.FromFrame(frame)

		switch format {
		case outputFormatJSON:
			bts, err := json.MarshalIndent(frameReport{File: pth, Frame: frame, State: gs}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			outputs = append(outputs, string(bts))
		default:
			s := pth + ":\n" + frame.Summary()
			if gs.HandClass != "" {
				s += fmt.Sprintf("hand:   %s\n", gs.HandClass)
			}
			outputs = append(outputs, s)
		}
	}

	final := strings.Join(outputs, "\n")
	if cfg.Output.File != "" {
		if err := os.WriteFile(cfg.Output.File, []byte(final), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", cfg.Output.File); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), final); err != nil {
			return fmt.Errorf("failed to write final output: %w", err)
		}
	}
	return nil
}

func addRecognizeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().Bool("cards-only", false, "skip text zones and recognize cards only")
	cmd.Flags().Bool("text-only", false, "skip cards and read text zones only")
	cmd.Flags().String("engine", "", "OCR engine (tesseract or onnx)")
	cmd.Flags().StringP("language", "l", "", "OCR language")
	cmd.Flags().Bool("strict", false, "use strict card acceptance gates")
}

// bindRecognizeFlags binds recognize flags to viper configuration keys.
func bindRecognizeFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"output.format", "format"},
		{"output.file", "output"},
		{"text.engine.kind", "engine"},
		{"text.engine.language", "language"},
		{"cards.strict", "strict"},
	}

	for _, binding := range flagBindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	addRecognizeFlags(recognizeCmd)
	bindRecognizeFlags(recognizeCmd)
}

// GetRecognizeCommand returns the recognize command for testing purposes.
func GetRecognizeCommand() *cobra.Command {
	return recognizeCmd
}
