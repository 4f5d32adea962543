package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const manifestName = "manifest.yaml"

// manifestDoc maps labels to image files relative to the template directory.
type manifestDoc struct {
	CanonicalSize int               `yaml:"canonical_size"`
	Ranks         map[string]string `yaml:"ranks"`
	Suits         map[string]string `yaml:"suits"`
}

// loadManifest loads templates listed in manifest.yaml. A canonical_size in
// the manifest overrides the caller's, so a deck skin can pin the size its
// bitmaps were calibrated for.
func (s *Store) loadManifest(dir, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: manifest lives inside the chosen template dir
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}
	if doc.CanonicalSize > 0 {
		s.size = doc.CanonicalSize
	}
	for _, label := range sortedKeys(doc.Ranks) {
		if err := s.add(filepath.Join(dir, doc.Ranks[label]), label, KindRank); err != nil {
			return err
		}
	}
	for _, label := range sortedKeys(doc.Suits) {
		if err := s.add(filepath.Join(dir, doc.Suits[label]), label, KindSuit); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
