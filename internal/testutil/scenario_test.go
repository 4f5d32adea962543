package testutil

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCard(t *testing.T) {
	tests := []struct {
		label string
		rank  string
		suit  string
	}{
		{"Ah", "A", "h"},
		{"2s", "2", "s"},
		{"10d", "10", "d"},
		{"Td", "10", "d"},
		{"Qc", "Q", "c"},
	}
	for _, tt := range tests {
		rank, suit := SplitCard(t, tt.label)
		assert.Equal(t, tt.rank, rank, tt.label)
		assert.Equal(t, tt.suit, suit, tt.label)
	}
}

func TestScenarioBuildFrame(t *testing.T) {
	p := TableProfile()
	s := TableScenario{
		Hero:  [2]string{"Ah", "Kd"},
		Board: []string{"7c", "8c", "9c"},
	}
	frame := s.BuildFrame(t, p)

	dealt := []string{"hero_card_1", "hero_card_2", "board_card_1", "board_card_2", "board_card_3"}
	var slots []image.Rectangle
	for _, slot := range dealt {
		region, ok := p.Region(slot)
		require.True(t, ok)
		rect, err := region.Resolve(400, 300, p.Anchors)
		require.NoError(t, err)
		slots = append(slots, rect)
	}

	felt := NewTableFrame()
	painted := 0
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			if frame.RGBAAt(x, y) == felt.RGBAAt(x, y) {
				continue
			}
			painted++
			inSlot := false
			for _, rect := range slots {
				if image.Pt(x, y).In(rect) {
					inSlot = true
					break
				}
			}
			require.True(t, inSlot, "paint outside dealt slots at (%d,%d)", x, y)
		}
	}
	// Five cards, two zones each, zones well over 100 px.
	assert.Greater(t, painted, 1000)
}

func TestScenarioScriptEngine(t *testing.T) {
	p := TableProfile()
	s := TableScenario{
		Texts: map[string]string{
			"pot":    "Pot 12.50",
			"name_1": "villain42",
		},
	}
	engine := s.ScriptEngine(t, p)

	dets, err := engine.Recognize(nil, PotWhitelist)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "Pot 12.50", dets[0].Text)
	assert.InDelta(t, ScriptedConfidence, dets[0].Confidence, 1e-9)

	dets, err = engine.Recognize(nil, NameWhitelist)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "villain42", dets[0].Text)

	// Unscripted whitelists read as nothing.
	dets, err = engine.Recognize(nil, MoneyWhitelist)
	require.NoError(t, err)
	assert.Empty(t, dets)
}
