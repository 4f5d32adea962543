package testutil

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight/internal/layout"
	"github.com/tablesight/tablesight/internal/templates"
)

// TableScenario describes one synthetic table state: which cards are
// visible and what the text zones read. Card labels use rank+suit
// notation ("Ah", "10d"); "T" is accepted for ten.
type TableScenario struct {
	Hero  [2]string         // empty label means the slot is not dealt
	Board []string          // dealt left to right, at most five
	Texts map[string]string // zone name -> raw OCR reading
}

// ScriptedConfidence is the confidence ScriptEngine assigns to every
// scenario reading.
const ScriptedConfidence = 0.93

// SplitCard splits a card label into its rank and suit families.
func SplitCard(t *testing.T, label string) (rank, suit string) {
	t.Helper()

	require.GreaterOrEqual(t, len(label), 2, "card label %q too short", label)
	rank, suit = label[:len(label)-1], label[len(label)-1:]
	if rank == "T" {
		rank = "10"
	}
	require.Contains(t, templates.RankFamilies, rank, "card label %q: unknown rank", label)
	require.Contains(t, templates.SuitFamilies, suit, "card label %q: unknown suit", label)
	return rank, suit
}

// BuildFrame paints the scenario's cards onto a fresh table frame.
// Text zones are left as felt; readings come from ScriptEngine.
func (s TableScenario) BuildFrame(t *testing.T, p *layout.Profile) *image.RGBA {
	t.Helper()

	require.LessOrEqual(t, len(s.Board), len(layout.BoardSlots), "board has too many cards")
	frame := NewTableFrame()
	for i, label := range s.Hero {
		if label == "" {
			continue
		}
		rank, suit := SplitCard(t, label)
		PaintCard(t, frame, p, layout.HeroSlots[i], rank+"_1", suit+"_1")
	}
	for i, label := range s.Board {
		rank, suit := SplitCard(t, label)
		PaintCard(t, frame, p, layout.BoardSlots[i], rank+"_1", suit+"_1")
	}
	return frame
}

// ScriptEngine builds an OCR engine answering the scenario's text
// readings, keyed by each zone's whitelist. Zones sharing a whitelist
// must script the same text.
func (s TableScenario) ScriptEngine(t *testing.T, p *layout.Profile) *ScriptedEngine {
	t.Helper()

	engine := NewScriptedEngine()
	scripted := map[string]string{} // whitelist -> zone that claimed it
	for zone, text := range s.Texts {
		region, ok := p.Region(zone)
		require.True(t, ok, "scenario text for unknown zone %q", zone)
		require.Equal(t, layout.KindText, region.Kind, "scenario text for non-text zone %q", zone)

		wl := region.Hint().Whitelist
		if prev, clash := scripted[wl]; clash && s.Texts[prev] != text {
			t.Fatalf("zones %q and %q share whitelist %q but script different texts", prev, zone, wl)
		}
		scripted[wl] = zone
		engine.Script(wl, text, ScriptedConfidence)
	}
	return engine
}
