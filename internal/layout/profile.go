package layout

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// profileDoc is the on-disk YAML shape of a room profile.
type profileDoc struct {
	Name       string               `yaml:"name"`
	ClientSize *Size                `yaml:"client_size"`
	Anchors    map[string]RectNorm  `yaml:"anchors"`
	Regions    map[string]regionDoc `yaml:"regions"`
	CardZones  map[string]yaml.Node `yaml:"card_zones"`
}

type regionDoc struct {
	Rect RectNorm `yaml:"rect"`
	Base baseDoc  `yaml:"base"`
	Kind string   `yaml:"kind"`
	OCR  *OCRHint `yaml:"ocr"`
}

// baseDoc accepts either the scalar "client" or a {anchor: name} mapping.
type baseDoc struct {
	Anchor string
}

func (b *baseDoc) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "client" || node.Value == "" {
			b.Anchor = ""
			return nil
		}
		return fmt.Errorf("invalid base %q: want \"client\" or {anchor: name}", node.Value)
	case yaml.MappingNode:
		var m struct {
			Anchor string `yaml:"anchor"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		if m.Anchor == "" {
			return fmt.Errorf("base mapping missing anchor name")
		}
		b.Anchor = m.Anchor
		return nil
	default:
		return fmt.Errorf("invalid base node")
	}
}

// zoneDoc is the canonical per-zone shape.
type zoneDoc struct {
	Rect  RectNorm `yaml:"rect"`
	Units string   `yaml:"units"`
}

// LoadProfile reads, migrates, and validates a room profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: reading user-provided profile path is expected
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile parses and validates profile YAML.
func ParseProfile(data []byte) (*Profile, error) {
	var doc profileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	p := &Profile{
		Name:       doc.Name,
		ClientSize: doc.ClientSize,
		Anchors:    doc.Anchors,
		Regions:    make(map[string]Region, len(doc.Regions)),
		CardZones:  make(map[string]ZoneSet, len(doc.CardZones)),
	}
	if p.Anchors == nil {
		p.Anchors = map[string]RectNorm{}
	}

	for name, rd := range doc.Regions {
		p.Regions[name] = Region{
			Name: name,
			Rect: rd.Rect,
			Base: Base{Anchor: rd.Base.Anchor},
			Kind: RegionKind(rd.Kind),
			OCR:  rd.OCR,
		}
	}

	for slot, node := range doc.CardZones {
		zs, err := decodeZoneSet(slot, node)
		if err != nil {
			return nil, fmt.Errorf("card zones for %q: %w", slot, err)
		}
		p.CardZones[slot] = zs
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// decodeZoneSet accepts the canonical shape (rank/suit keys with typed zone
// entries) and the legacy shape (arbitrary zone names mapped to bare
// rectangles, type inferred from the name). The legacy path is an input
// migration shim only.
func decodeZoneSet(slot string, node yaml.Node) (ZoneSet, error) {
	var zs ZoneSet
	if node.Kind != yaml.MappingNode {
		return zs, fmt.Errorf("expected mapping")
	}

	canonical := false
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if key == string(ZoneRank) || key == string(ZoneSuit) {
			canonical = true
			break
		}
	}

	if canonical {
		var m map[string]zoneDoc
		if err := node.Decode(&m); err != nil {
			return zs, err
		}
		for key, zd := range m {
			zone := &Zone{Type: ZoneType(key), Rect: zd.Rect, Units: ZoneUnits(zd.Units)}
			if zone.Units == "" {
				zone.Units = UnitsNormalized
			}
			switch zone.Type {
			case ZoneRank:
				if zs.Rank != nil {
					return zs, fmt.Errorf("duplicate rank zone")
				}
				zs.Rank = zone
			case ZoneSuit:
				if zs.Suit != nil {
					return zs, fmt.Errorf("duplicate suit zone")
				}
				zs.Suit = zone
			default:
				return zs, fmt.Errorf("unknown zone type %q", key)
			}
		}
		return zs, nil
	}

	// Legacy shape: zone-name keys with bare rectangles.
	var legacy map[string]RectNorm
	if err := node.Decode(&legacy); err != nil {
		return zs, fmt.Errorf("unrecognized zone shape: %w", err)
	}
	for name, rect := range legacy {
		zt, ok := sniffZoneType(name)
		if !ok {
			slog.Debug("skipping legacy card zone with unrecognized name", "slot", slot, "zone", name)
			continue
		}
		zone := &Zone{Type: zt, Rect: rect, Units: UnitsNormalized}
		switch zt {
		case ZoneRank:
			if zs.Rank != nil {
				return zs, fmt.Errorf("legacy zones map to duplicate rank zone")
			}
			zs.Rank = zone
		case ZoneSuit:
			if zs.Suit != nil {
				return zs, fmt.Errorf("legacy zones map to duplicate suit zone")
			}
			zs.Suit = zone
		}
	}
	return zs, nil
}

// sniffZoneType guesses a legacy zone's type from its name.
func sniffZoneType(name string) (ZoneType, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "rank"), strings.Contains(lower, "val"):
		return ZoneRank, true
	case strings.Contains(lower, "suit"):
		return ZoneSuit, true
	default:
		return "", false
	}
}

// knownSlot reports whether name is one of the fixed card slot names.
func knownSlot(name string) bool {
	if name == "default" {
		return true
	}
	for _, s := range HeroSlots {
		if s == name {
			return true
		}
	}
	for _, s := range BoardSlots {
		if s == name {
			return true
		}
	}
	return false
}

// Validate rejects malformed profiles: bad rectangles, unknown anchors and
// slots, text regions anchored to zones, invalid kinds and semantics.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile has no name")
	}

	for name, rect := range p.Anchors {
		if err := rect.Validate(); err != nil {
			return fmt.Errorf("anchor %q: %w", name, err)
		}
	}

	for name, r := range p.Regions {
		if err := r.Rect.Validate(); err != nil {
			return fmt.Errorf("region %q: %w", name, err)
		}
		switch r.Kind {
		case KindCard:
			if !knownSlot(name) {
				return fmt.Errorf("region %q: card regions must use the fixed slot names", name)
			}
		case KindText:
			if !r.Base.IsClient() {
				return fmt.Errorf("region %q: text regions must be client-relative", name)
			}
		default:
			return fmt.Errorf("region %q: invalid kind %q", name, r.Kind)
		}
		if !r.Base.IsClient() {
			if _, ok := p.Anchors[r.Base.Anchor]; !ok {
				return fmt.Errorf("region %q: unknown anchor %q", name, r.Base.Anchor)
			}
		}
		if r.OCR != nil {
			switch r.OCR.Semantics {
			case "", SemanticsGeneric, SemanticsName, SemanticsPot, SemanticsMoney:
			default:
				return fmt.Errorf("region %q: invalid ocr semantics %q", name, r.OCR.Semantics)
			}
		}
	}

	for slot, zs := range p.CardZones {
		if !knownSlot(slot) {
			return fmt.Errorf("card zones %q: unknown slot name", slot)
		}
		for _, zone := range []*Zone{zs.Rank, zs.Suit} {
			if zone == nil {
				continue
			}
			if zone.Units != UnitsNormalized && zone.Units != UnitsPixel {
				return fmt.Errorf("card zones %q: invalid units %q", slot, zone.Units)
			}
			if zone.Units == UnitsNormalized {
				if err := zone.Rect.Validate(); err != nil {
					return fmt.Errorf("card zones %q (%s): %w", slot, zone.Type, err)
				}
			} else {
				if zone.Rect.W <= 0 || zone.Rect.H <= 0 {
					return fmt.Errorf("card zones %q (%s): nonpositive pixel span", slot, zone.Type)
				}
				if p.ClientSize == nil || p.ClientSize.Width <= 0 || p.ClientSize.Height <= 0 {
					return fmt.Errorf("card zones %q (%s): pixel units require client_size", slot, zone.Type)
				}
			}
		}
	}
	return nil
}
