package support

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/layout"
	"github.com/tablesight/tablesight/internal/recognition"
	"github.com/tablesight/tablesight/internal/templates"
	"github.com/tablesight/tablesight/internal/utils"
)

// theRecordedHandIsReplayedStreetByStreet runs card recognition over
// the generated hand scenes in file order, feeding the street tracker
// the same way a live capture loop would.
func (testCtx *TestContext) theRecordedHandIsReplayedStreetByStreet() error {
	if testCtx.ScenesDir == "" {
		return errors.New("synthetic test data was not generated")
	}

	store, err := templates.LoadDir(testCtx.TemplatesDir, templates.DefaultCanonicalSize)
	if err != nil {
		return fmt.Errorf("failed to load template pack: %w", err)
	}
	recognizer, err := cards.NewRecognizer(cards.DefaultConfig(), store)
	if err != nil {
		return fmt.Errorf("failed to create card recognizer: %w", err)
	}
	profile, err := layout.LoadProfile(testCtx.ProfilePath)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	scenes, err := filepath.Glob(filepath.Join(testCtx.ScenesDir, "*.png"))
	if err != nil {
		return fmt.Errorf("failed to list scenes: %w", err)
	}
	if len(scenes) == 0 {
		return fmt.Errorf("no scene images found in %s", testCtx.ScenesDir)
	}

	tracker := recognition.NewStreetTracker()
	testCtx.Streets = nil
	for _, scene := range scenes {
		img, err := utils.LoadImage(scene)
		if err != nil {
			return fmt.Errorf("failed to load scene %s: %w", scene, err)
		}
		result, err := recognizer.RecognizeAll(img, profile)
		if err != nil {
			return fmt.Errorf("recognition failed for %s: %w", scene, err)
		}
		testCtx.Streets = append(testCtx.Streets, tracker.Observe(result.BoardCount()))
		testCtx.LastCards = result
		testCtx.HaveCards = true
	}
	return nil
}

// theObservedStreetsShouldBe compares the tracked street sequence with
// a comma-separated expectation.
func (testCtx *TestContext) theObservedStreetsShouldBe(expected string) error {
	var want []recognition.Street
	for _, s := range strings.Split(expected, ",") {
		want = append(want, recognition.Street(strings.TrimSpace(s)))
	}

	if len(testCtx.Streets) != len(want) {
		return fmt.Errorf("observed %d streets %v, expected %d (%v)",
			len(testCtx.Streets), testCtx.Streets, len(want), want)
	}
	for i, s := range want {
		if testCtx.Streets[i] != s {
			return fmt.Errorf("street %d is %q, expected %q (full sequence: %v)",
				i+1, testCtx.Streets[i], s, testCtx.Streets)
		}
	}
	return nil
}

// heroCardShouldRead checks one hero slot's recognized label on the
// last replayed frame.
func (testCtx *TestContext) heroCardShouldRead(slot int, label string) error {
	if !testCtx.HaveCards {
		return errors.New("no recognition result captured yet")
	}
	if slot < 1 || slot > len(testCtx.LastCards.Hero) {
		return fmt.Errorf("hero slot %d out of range", slot)
	}
	got := testCtx.LastCards.Hero[slot-1].Label()
	if got != label {
		return fmt.Errorf("hero card %d reads %q, expected %q", slot, got, label)
	}
	return nil
}

// theFinalBoardShouldInclude checks the last replayed frame's board for
// a card label.
func (testCtx *TestContext) theFinalBoardShouldInclude(label string) error {
	if !testCtx.HaveCards {
		return errors.New("no recognition result captured yet")
	}
	var seen []string
	for _, c := range testCtx.LastCards.Board {
		if !c.Present() {
			continue
		}
		if c.Label() == label {
			return nil
		}
		seen = append(seen, c.Label())
	}
	return fmt.Errorf("board %v does not include %q", seen, label)
}

// theFinalBoardShouldHoldCards checks how many board cards the last
// replayed frame recognized.
func (testCtx *TestContext) theFinalBoardShouldHoldCards(count int) error {
	if !testCtx.HaveCards {
		return errors.New("no recognition result captured yet")
	}
	if got := testCtx.LastCards.BoardCount(); got != count {
		return fmt.Errorf("board holds %d cards, expected %d", got, count)
	}
	return nil
}

// RegisterRecognitionSteps registers in-process card recognition steps.
func (testCtx *TestContext) RegisterRecognitionSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the recorded hand is replayed street by street$`, testCtx.theRecordedHandIsReplayedStreetByStreet)
	sc.Step(`^the observed streets should be "([^"]*)"$`, testCtx.theObservedStreetsShouldBe)
	sc.Step(`^hero card (\d+) should read "([^"]*)"$`, testCtx.heroCardShouldRead)
	sc.Step(`^the final board should include "([^"]*)"$`, testCtx.theFinalBoardShouldInclude)
	sc.Step(`^the final board should hold (\d+) cards$`, testCtx.theFinalBoardShouldHoldCards)
}
