// Package cards recognizes rank and suit symbols in card slots by normalized
// cross-correlation against a canonicalized template store.
package cards

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/tablesight/tablesight/internal/layout"
	"github.com/tablesight/tablesight/internal/templates"
	"github.com/tablesight/tablesight/internal/utils"
)

// Recognizer scores card slots against a template store. It holds no mutable
// state after construction and is safe for concurrent use.
type Recognizer struct {
	config Config
	store  *templates.Store
	size   int
}

// NewRecognizer creates a card recognizer over a loaded template store.
func NewRecognizer(config Config, store *templates.Store) (*Recognizer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("card recognizer config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("card recognizer requires a template store")
	}
	size := store.Size()
	if size != config.CanonicalSize {
		slog.Debug("template store pins a different canonical size",
			"config", config.CanonicalSize, "store", size)
	}
	slog.Debug("card recognizer initialized",
		"canonical_size", size,
		"rank_templates", len(store.Ranks()),
		"suit_templates", len(store.Suits()),
		"strict", config.Strict)
	return &Recognizer{config: config, store: store, size: size}, nil
}

// Config returns a copy of the recognizer's configuration.
func (r *Recognizer) Config() Config {
	return r.config
}

// RecognizeAll scores every hero and board slot of the profile in one frame.
// Per-slot problems degrade that slot to an uncertain result; only a frame
// that cannot be read at all is an error.
func (r *Recognizer) RecognizeAll(frame image.Image, profile *layout.Profile) (Result, error) {
	var res Result
	if profile == nil {
		return res, fmt.Errorf("recognize: nil profile")
	}
	gray, err := utils.GrayFromImage(frame)
	if err != nil {
		return res, fmt.Errorf("recognize: %w", err)
	}
	client := &layout.Size{Width: gray.Width, Height: gray.Height}

	for i, slot := range layout.HeroSlots {
		res.Hero[i] = r.recognizeSlot(gray, slot, profile, client)
	}
	for i, slot := range layout.BoardSlots {
		res.Board[i] = r.recognizeSlot(gray, slot, profile, client)
	}
	return res, nil
}

// unrecognized is the degraded result for slots that cannot be evaluated.
func unrecognized() CardResult {
	return CardResult{IsUncertain: true}
}

func (r *Recognizer) recognizeSlot(gray *utils.Gray32, slot string, profile *layout.Profile, client *layout.Size) CardResult {
	region, ok := profile.Region(slot)
	if !ok || region.Kind != layout.KindCard {
		slog.Debug("card slot has no region configured", "slot", slot)
		return unrecognized()
	}
	rect, err := region.Resolve(gray.Width, gray.Height, profile.Anchors)
	if err != nil {
		slog.Debug("card slot region did not resolve", "slot", slot, "err", err)
		return unrecognized()
	}
	crop, err := gray.Crop(rect)
	if err != nil {
		slog.Debug("card slot crop failed", "slot", slot, "err", err)
		return unrecognized()
	}

	zones, ok := profile.ZonesFor(slot)
	if !ok || zones.Rank == nil || zones.Suit == nil {
		slog.Debug("card slot has no rank/suit zone config", "slot", slot)
		return unrecognized()
	}
	rankPlane := r.cropZone(crop, zones.Rank, slot, client, profile.ClientSize)
	suitPlane := r.cropZone(crop, zones.Suit, slot, client, profile.ClientSize)
	if rankPlane == nil || suitPlane == nil {
		return unrecognized()
	}

	rankStd := rankPlane.StdDev()
	suitStd := suitPlane.StdDev()
	if rankStd < r.config.BlankStd && suitStd < r.config.BlankStd {
		// Both zones flat: an empty slot, not an error.
		return unrecognized()
	}
	rankPlane = r.edgeFallback(rankPlane, rankStd, slot, layout.ZoneRank)
	suitPlane = r.edgeFallback(suitPlane, suitStd, slot, layout.ZoneSuit)

	rankScores := r.scoreZone(rankPlane, r.store.Ranks())
	suitScores := r.scoreZone(suitPlane, r.store.Suits())

	gate := r.config.GateFor(layout.IsHeroSlot(slot))
	rankFamily, rankConf, rankOK := r.evaluate(rankScores, gate)
	suitFamily, suitConf, suitOK := r.evaluate(suitScores, gate)

	combined := (rankConf + suitConf) / 2
	out := CardResult{
		RankConfidence:     rankConf,
		SuitConfidence:     suitConf,
		CombinedConfidence: combined,
		IsUncertain:        combined < r.config.UncertainBelow || !rankOK || !suitOK,
		RankScores:         rankScores,
		SuitScores:         suitScores,
	}
	if rankOK {
		out.Rank = rankFamily
	}
	if suitOK {
		out.Suit = suitFamily
	}
	return out
}

// cropZone resolves a sub-zone inside the card crop. nil means the zone is
// unusable this cycle.
func (r *Recognizer) cropZone(crop *utils.Gray32, zone *layout.Zone, slot string, client, ref *layout.Size) *utils.Gray32 {
	rect, err := zone.ResolveIn(crop.Width, crop.Height, client, ref)
	if err != nil {
		slog.Debug("card zone did not resolve", "slot", slot, "zone", zone.Type, "err", err)
		return nil
	}
	plane, err := crop.Crop(rect)
	if err != nil {
		slog.Debug("card zone crop failed", "slot", slot, "zone", zone.Type, "err", err)
		return nil
	}
	return plane
}

// edgeFallback swaps a very low-texture zone for its Canny edge map so faint
// contours still have something to correlate against. The zone is contrast
// stretched first; raw faint gradients would never clear the hysteresis
// thresholds.
func (r *Recognizer) edgeFallback(plane *utils.Gray32, std float64, slot string, zone layout.ZoneType) *utils.Gray32 {
	if std >= r.config.EdgeStd {
		return plane
	}
	slog.Debug("low-texture zone, matching on edge map", "slot", slot, "zone", zone, "std", std)
	stretched := plane.Clone()
	minVal, maxVal := stretched.MinMax()
	if spread := maxVal - minVal; spread > 0 {
		scale := 255.0 / spread
		for i, v := range stretched.Pix {
			stretched.Pix[i] = (v - minVal) * scale
		}
	}
	return utils.CannyEdges(stretched, r.config.EdgeLow, r.config.EdgeHigh)
}

// scoreZone canonicalizes a probe and correlates it against every template.
// A template that cannot be scored contributes 0 rather than failing the slot.
func (r *Recognizer) scoreZone(plane *utils.Gray32, tpls []templates.Template) map[string]float64 {
	scores := make(map[string]float64, len(tpls))
	probe, err := templates.Canonicalize(plane, r.size)
	if err != nil {
		slog.Debug("probe canonicalization failed", "err", err)
		for _, t := range tpls {
			scores[t.Label] = 0
		}
		return scores
	}
	for _, t := range tpls {
		score, err := MatchScore(probe, t.Plane)
		if err != nil {
			slog.Debug("template match failed", "label", t.Label, "err", err)
			score = 0
		}
		scores[t.Label] = score
	}
	return scores
}

// evaluate aggregates label scores into families, applies the gate, and maps
// the winner through the confidence sigmoid.
func (r *Recognizer) evaluate(scores map[string]float64, gate Gate) (family string, confidence float64, accepted bool) {
	if len(scores) == 0 {
		return "", 0, false
	}
	families := AggregateFamilies(scores)
	label, top1, top2 := TopTwo(families)
	margin := 0.0
	if len(families) > 1 {
		margin = top1 - top2
	}
	confidence = Sigmoid(r.config.SigmoidAlpha*top1 + r.config.SigmoidBeta*margin)
	return label, confidence, gate.Accept(top1, margin)
}
