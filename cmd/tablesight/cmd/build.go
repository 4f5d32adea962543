package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablesight/tablesight/internal/capture"
	"github.com/tablesight/tablesight/internal/config"
	"github.com/tablesight/tablesight/internal/layout"
	"github.com/tablesight/tablesight/internal/recognition"
	"github.com/tablesight/tablesight/internal/templates"
)

// addCaptureFlags registers the capture selection flags shared by the
// watch and serve commands.
func addCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "file", "capture source (file or dir)")
	cmd.Flags().String("path", "", "image file or directory to capture frames from")
	cmd.Flags().Bool("loop", true, "restart the directory replay when exhausted")
	cmd.Flags().Duration("interval", recognition.DefaultInterval, "recognition cadence")
}

// applyCaptureFlags folds explicit command-line capture selection over
// the configuration.
func applyCaptureFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("source") {
		cfg.Capture.Source, _ = cmd.Flags().GetString("source")
	}
	if cmd.Flags().Changed("path") {
		cfg.Capture.Path, _ = cmd.Flags().GetString("path")
	}
	if cmd.Flags().Changed("loop") {
		cfg.Capture.Loop, _ = cmd.Flags().GetBool("loop")
	}
	if cmd.Flags().Changed("interval") {
		cfg.Recognition.Interval, _ = cmd.Flags().GetDuration("interval")
	}
}

// loadConfiguredProfile loads the room profile named by the configuration.
func loadConfiguredProfile(cfg *config.Config) (*layout.Profile, error) {
	if cfg.ProfilePath == "" {
		return nil, errors.New("a room profile is required (--profile or the profile config key)")
	}
	return layout.LoadProfile(cfg.ProfilePath)
}

// buildCaptureSource constructs the frame source selected by the
// configuration.
func buildCaptureSource(cfg *config.Config) (capture.Source, error) {
	if cfg.Capture.Path == "" {
		return nil, errors.New("a capture path is required (--path or the capture.path config key)")
	}
	switch cfg.Capture.Source {
	case "", "file":
		return capture.NewFileSource(cfg.Capture.Path)
	case "dir":
		return capture.NewDirSource(cfg.Capture.Path, cfg.Capture.Loop)
	default:
		return nil, fmt.Errorf("unknown capture source %q (must be file or dir)", cfg.Capture.Source)
	}
}

// buildOrchestrator wires the profile, template store, recognizer tuning
// and capture source into a recognition orchestrator.
func buildOrchestrator(cfg *config.Config) (*recognition.Orchestrator, error) {
	profile, err := loadConfiguredProfile(cfg)
	if err != nil {
		return nil, err
	}

	cardCfg := cfg.ToCardsConfig()
	store, err := templates.LoadDir(cfg.ResolveTemplatesDir(), cardCfg.CanonicalSize)
	if err != nil {
		return nil, fmt.Errorf("load card templates: %w", err)
	}

	src, err := buildCaptureSource(cfg)
	if err != nil {
		return nil, err
	}

	orch, err := recognition.NewBuilder().
		WithProfile(profile).
		WithTemplates(store).
		WithCardConfig(cardCfg).
		WithTextConfig(cfg.ToTextConfig()).
		WithCapture(src).
		WithInterval(cfg.Recognition.Interval).
		Build()
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return orch, nil
}
