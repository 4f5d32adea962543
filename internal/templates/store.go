// Package templates loads and canonicalizes the reference bitmaps the card
// recognizer scores card zones against. Labels follow the <symbol>_<variant>
// convention (A_1, h_2); variants of the same symbol form one family.
package templates

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tablesight/tablesight/internal/utils"
)

// Kind separates rank templates from suit templates.
type Kind string

const (
	KindRank Kind = "rank"
	KindSuit Kind = "suit"
)

// Subdirectory names for the organized template layout.
const (
	rankSubdir = "ranks"
	suitSubdir = "suits"
)

// Filename prefixes for the flat template layout.
const (
	rankPrefix = "r_"
	suitPrefix = "s_"
)

// DefaultCanonicalSize is the square edge both templates and probe zones are
// resized to before correlation.
const DefaultCanonicalSize = 56

// Default templates directory.
const DefaultTemplatesDir = "templates"

// Environment variable for templates directory override.
const EnvTemplatesDir = "TABLESIGHT_TEMPLATES_DIR"

// RankFamilies is the full set of rank symbols a complete store covers.
// "10" and "T" are interchangeable names for the ten.
var RankFamilies = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// SuitFamilies is the full set of suit symbols a complete store covers.
var SuitFamilies = []string{"h", "d", "c", "s"}

// Template is one canonicalized reference bitmap.
type Template struct {
	Label string
	Kind  Kind
	Plane *utils.Gray32
}

// Family returns the symbol prefix of a label, stripping the variant suffix
// at the first underscore. "A_1" -> "A", "10_2" -> "10", "A" -> "A".
func (t Template) Family() string {
	return Family(t.Label)
}

// Family strips the variant suffix from a template label.
func Family(label string) string {
	if i := strings.Index(label, "_"); i >= 0 {
		return label[:i]
	}
	return label
}

// Store holds the canonicalized rank and suit templates for one deck skin.
// It is read-only after load and safe for concurrent readers.
type Store struct {
	size  int
	ranks []Template
	suits []Template
}

// Size returns the canonical square edge in pixels.
func (s *Store) Size() int { return s.size }

// Ranks returns the rank templates in load order.
func (s *Store) Ranks() []Template { return s.ranks }

// Suits returns the suit templates in load order.
func (s *Store) Suits() []Template { return s.suits }

// Families returns the sorted distinct family symbols present for a kind.
func (s *Store) Families(kind Kind) []string {
	src := s.ranks
	if kind == KindSuit {
		src = s.suits
	}
	seen := make(map[string]struct{}, len(src))
	for _, t := range src {
		seen[t.Family()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Check verifies the store covers all 13 rank and 4 suit families.
func (s *Store) Check() error {
	var missing []string

	rankSeen := make(map[string]struct{})
	for _, t := range s.ranks {
		rankSeen[normalizeTen(t.Family())] = struct{}{}
	}
	for _, f := range RankFamilies {
		if _, ok := rankSeen[normalizeTen(f)]; !ok {
			missing = append(missing, "rank "+f)
		}
	}

	suitSeen := make(map[string]struct{})
	for _, t := range s.suits {
		suitSeen[strings.ToLower(t.Family())] = struct{}{}
	}
	for _, f := range SuitFamilies {
		if _, ok := suitSeen[f]; !ok {
			missing = append(missing, "suit "+f)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("template coverage incomplete: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// normalizeTen folds the two spellings of the ten family together.
func normalizeTen(f string) string {
	if f == "T" {
		return "10"
	}
	return f
}

// GetTemplatesDir returns the templates directory path.
// Priority: explicit parameter, environment variable, project root fallback.
func GetTemplatesDir(dir string) string {
	if dir != "" {
		return dir
	}
	if envDir := os.Getenv(EnvTemplatesDir); envDir != "" {
		return envDir
	}
	if root, err := findProjectRoot(); err == nil {
		return filepath.Join(root, DefaultTemplatesDir)
	}
	return DefaultTemplatesDir
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("could not find project root (go.mod not found)")
}

// Canonicalize resizes a plane to size x size and applies a light Gaussian
// blur. Probe zones and templates must pass through this same function so the
// correlation compares like with like. The output is deterministic for a
// given input.
func Canonicalize(g *utils.Gray32, size int) (*utils.Gray32, error) {
	if size <= 0 {
		size = DefaultCanonicalSize
	}
	resized, err := utils.ResizePlane(g, size, size)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing to %dx%d: %w", size, size, err)
	}
	return utils.GaussianBlur3x3(resized), nil
}

// LoadDir loads a template directory into a Store with the given canonical
// size. Three layouts are accepted, in priority order: a manifest.yaml
// mapping labels to files, ranks/ and suits/ subdirectories, and a flat
// directory with r_/s_ filename prefixes. A missing or empty directory is an
// error; incomplete family coverage is reported by Check, not here.
func LoadDir(dir string, size int) (*Store, error) {
	if size <= 0 {
		size = DefaultCanonicalSize
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template directory: %s is not a directory", dir)
	}

	s := &Store{size: size}

	manifestPath := filepath.Join(dir, manifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		if err := s.loadManifest(dir, manifestPath); err != nil {
			return nil, err
		}
		return s.finish(dir)
	}

	rankDir := filepath.Join(dir, rankSubdir)
	suitDir := filepath.Join(dir, suitSubdir)
	if dirExists(rankDir) || dirExists(suitDir) {
		if err := s.loadSubdir(rankDir, KindRank); err != nil {
			return nil, err
		}
		if err := s.loadSubdir(suitDir, KindSuit); err != nil {
			return nil, err
		}
		return s.finish(dir)
	}

	if err := s.loadFlat(dir); err != nil {
		return nil, err
	}
	return s.finish(dir)
}

func (s *Store) finish(dir string) (*Store, error) {
	if len(s.ranks) == 0 && len(s.suits) == 0 {
		return nil, fmt.Errorf("template directory %s: no templates found", dir)
	}
	if err := s.Check(); err != nil {
		slog.Warn("loaded templates with incomplete coverage", "dir", dir, "err", err)
	}
	slog.Debug("templates loaded",
		"dir", dir, "ranks", len(s.ranks), "suits", len(s.suits), "size", s.size)
	return s, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (s *Store) loadSubdir(dir string, kind Kind) error {
	if !dirExists(dir) {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !utils.IsSupportedImage(e.Name()) {
			continue
		}
		label := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := s.add(filepath.Join(dir, e.Name()), label, kind); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadFlat(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !utils.IsSupportedImage(e.Name()) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		switch {
		case strings.HasPrefix(name, rankPrefix):
			if err := s.add(filepath.Join(dir, e.Name()), strings.TrimPrefix(name, rankPrefix), KindRank); err != nil {
				return err
			}
		case strings.HasPrefix(name, suitPrefix):
			if err := s.add(filepath.Join(dir, e.Name()), strings.TrimPrefix(name, suitPrefix), KindSuit); err != nil {
				return err
			}
		default:
			slog.Debug("skipping template file without kind prefix", "file", e.Name())
		}
	}
	return nil
}

func (s *Store) add(path, label string, kind Kind) error {
	img, err := utils.LoadImage(path)
	if err != nil {
		return fmt.Errorf("template %q: %w", label, err)
	}
	plane, err := utils.GrayFromImage(img)
	if err != nil {
		return fmt.Errorf("template %q: %w", label, err)
	}
	canonical, err := Canonicalize(plane, s.size)
	if err != nil {
		return fmt.Errorf("template %q: %w", label, err)
	}
	t := Template{Label: label, Kind: kind, Plane: canonical}
	if kind == KindRank {
		s.ranks = append(s.ranks, t)
	} else {
		s.suits = append(s.suits, t)
	}
	return nil
}
