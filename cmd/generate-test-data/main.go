// Command generate-test-data writes the synthetic fixtures used by tests
// and local experiments: a full card template pack, the matching room
// profile, and a scene sequence that replays one hand street by street.
// Text zones stay felt-colored; OCR readings come from scripted engines.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tablesight/tablesight/internal/layout"
	"github.com/tablesight/tablesight/internal/templates"
	"github.com/tablesight/tablesight/internal/testutil"
	"github.com/tablesight/tablesight/internal/utils"
)

func main() {
	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		generateTemplates = flag.Bool("templates", true, "Generate the card template pack")
		generateProfiles  = flag.Bool("profiles", true, "Generate the synthetic room profile")
		generateScenes    = flag.Bool("scenes", true, "Generate the table scene sequence")
		outDir            = flag.String("out", "testdata", "Output directory")
		verbose           = flag.Bool("v", false, "Verbose output")
		help              = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate synthetic table test data.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                 # Generate everything under testdata/\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -scenes=false   # Generate only templates and the profile\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -out /tmp/ts    # Generate into another directory\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	slog.Info("Starting test data generation", "out", *outDir)

	if *verbose {
		slog.Info("Options",
			"templates", *generateTemplates, "profiles", *generateProfiles, "scenes", *generateScenes)
	}

	if *generateTemplates {
		if err := writeTemplatePack(filepath.Join(*outDir, "templates")); err != nil {
			slog.Error("Failed to generate template pack", "error", err)
			os.Exit(1)
		}
		slog.Info("Generated card template pack")
	}

	if *generateProfiles {
		if err := writeProfile(filepath.Join(*outDir, "profiles", "synthetic-table.yaml")); err != nil {
			slog.Error("Failed to generate room profile", "error", err)
			os.Exit(1)
		}
		slog.Info("Generated room profile")
	}

	if *generateScenes {
		if err := writeScenes(filepath.Join(*outDir, "scenes")); err != nil {
			slog.Error("Failed to generate scene sequence", "error", err)
			os.Exit(1)
		}
		slog.Info("Generated scene sequence")
	}

	slog.Info("Test data generation completed")
}

// writeTemplatePack writes one pattern bitmap per rank and suit family in
// the organized ranks/ and suits/ layout.
func writeTemplatePack(dir string) error {
	for _, f := range templates.RankFamilies {
		if err := writeTemplate(filepath.Join(dir, "ranks", f+"_1.png"), f+"_1"); err != nil {
			return err
		}
	}
	for _, f := range templates.SuitFamilies {
		if err := writeTemplate(filepath.Join(dir, "suits", f+"_1.png"), f+"_1"); err != nil {
			return err
		}
	}
	return nil
}

func writeTemplate(path, label string) error {
	edge := templates.DefaultCanonicalSize
	img := image.NewRGBA(image.Rect(0, 0, edge, edge))
	testutil.PaintPattern(img, img.Bounds(), label)

	if err := testutil.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("template directory: %w", err)
	}
	if err := utils.SavePNG(path, img); err != nil {
		return fmt.Errorf("template %q: %w", label, err)
	}
	return nil
}

// Profile document shapes mirroring the on-disk YAML schema.
type profileDoc struct {
	Name       string                `yaml:"name"`
	ClientSize *layout.Size          `yaml:"client_size"`
	Regions    map[string]regionDoc  `yaml:"regions"`
	CardZones  map[string]zoneSetDoc `yaml:"card_zones"`
}

type regionDoc struct {
	Rect layout.RectNorm `yaml:"rect"`
	Kind string          `yaml:"kind"`
	OCR  *layout.OCRHint `yaml:"ocr,omitempty"`
}

type zoneSetDoc struct {
	Rank zoneDoc `yaml:"rank"`
	Suit zoneDoc `yaml:"suit"`
}

type zoneDoc struct {
	Rect  layout.RectNorm `yaml:"rect"`
	Units string          `yaml:"units"`
}

// writeProfile serializes the synthetic table profile and reloads it to
// prove the written file parses and validates.
func writeProfile(path string) error {
	p := testutil.TableProfile()

	doc := profileDoc{
		Name:       p.Name,
		ClientSize: p.ClientSize,
		Regions:    make(map[string]regionDoc, len(p.Regions)),
		CardZones:  make(map[string]zoneSetDoc, len(p.CardZones)),
	}
	for name, r := range p.Regions {
		doc.Regions[name] = regionDoc{Rect: r.Rect, Kind: string(r.Kind), OCR: r.OCR}
	}
	for slot, zs := range p.CardZones {
		doc.CardZones[slot] = zoneSetDoc{
			Rank: zoneDoc{Rect: zs.Rank.Rect, Units: string(zs.Rank.Units)},
			Suit: zoneDoc{Rect: zs.Suit.Rect, Units: string(zs.Suit.Units)},
		}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	if err := testutil.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("profile directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}

	if _, err := layout.LoadProfile(path); err != nil {
		return fmt.Errorf("written profile does not load: %w", err)
	}
	return nil
}

// One hand, replayed street by street. DirSource walks the files in name
// order, so the prefixes fix the replay order.
var handScenes = []struct {
	file  string
	board []string
}{
	{"01_preflop.png", nil},
	{"02_flop.png", []string{"7c", "8c", "9c"}},
	{"03_turn.png", []string{"7c", "8c", "9c", "2d"}},
	{"04_river.png", []string{"7c", "8c", "9c", "2d", "Js"}},
}

var heroCards = [2]string{"Ah", "Kd"}

func writeScenes(dir string) error {
	if err := testutil.EnsureDir(dir); err != nil {
		return fmt.Errorf("scene directory: %w", err)
	}

	p := testutil.TableProfile()
	for _, scene := range handScenes {
		frame := testutil.NewTableFrame()
		for i, label := range heroCards {
			if err := paintCard(frame, p, layout.HeroSlots[i], label); err != nil {
				return fmt.Errorf("scene %s: %w", scene.file, err)
			}
		}
		for i, label := range scene.board {
			if err := paintCard(frame, p, layout.BoardSlots[i], label); err != nil {
				return fmt.Errorf("scene %s: %w", scene.file, err)
			}
		}
		if err := utils.SavePNG(filepath.Join(dir, scene.file), frame); err != nil {
			return fmt.Errorf("scene %s: %w", scene.file, err)
		}
	}
	return nil
}

// paintCard draws a card label's rank and suit patterns into a slot's
// resolved zones.
func paintCard(img *image.RGBA, p *layout.Profile, slot, label string) error {
	if len(label) < 2 {
		return fmt.Errorf("card label %q too short", label)
	}
	rank, suit := label[:len(label)-1], label[len(label)-1:]
	if rank == "T" {
		rank = "10"
	}

	region, ok := p.Region(slot)
	if !ok {
		return fmt.Errorf("unknown card slot %q", slot)
	}
	b := img.Bounds()
	rect, err := region.Resolve(b.Dx(), b.Dy(), p.Anchors)
	if err != nil {
		return err
	}
	zones, ok := p.ZonesFor(slot)
	if !ok {
		return fmt.Errorf("no card zones for slot %q", slot)
	}
	client := &layout.Size{Width: b.Dx(), Height: b.Dy()}

	rankRect, err := zones.Rank.ResolveIn(rect.Dx(), rect.Dy(), client, p.ClientSize)
	if err != nil {
		return err
	}
	testutil.PaintPattern(img, rankRect.Add(rect.Min), rank+"_1")

	suitRect, err := zones.Suit.ResolveIn(rect.Dx(), rect.Dy(), client, p.ClientSize)
	if err != nil {
		return err
	}
	testutil.PaintPattern(img, suitRect.Add(rect.Min), suit+"_1")
	return nil
}
