package support

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cucumber/godog"

	"github.com/tablesight/tablesight/internal/recognition"
	"github.com/tablesight/tablesight/internal/state"
	"github.com/tablesight/tablesight/internal/testutil"
	"github.com/tablesight/tablesight/internal/textrec"
)

// aSyntheticTableFrame prepares the felt frame, its calibration profile
// and a scripted OCR engine so scenarios can dictate zone readings.
func (testCtx *TestContext) aSyntheticTableFrame() error {
	testCtx.TableProfile = testutil.TableProfile()
	testCtx.TableFrame = testutil.NewTableFrame()
	testCtx.Engine = testutil.NewScriptedEngine()
	testCtx.GameState = nil
	return nil
}

func (testCtx *TestContext) scriptZone(whitelist, text string, confidence float64) error {
	if testCtx.Engine == nil {
		return errors.New("no synthetic table frame prepared")
	}
	testCtx.Engine.Script(whitelist, text, confidence)
	return nil
}

// thePotZoneReads scripts the pot reading at full confidence.
func (testCtx *TestContext) thePotZoneReads(text string) error {
	return testCtx.scriptZone(testutil.PotWhitelist, text, testutil.ScriptedConfidence)
}

// thePotZoneReadsWithConfidence scripts the pot reading at a chosen
// confidence.
func (testCtx *TestContext) thePotZoneReadsWithConfidence(text string, confidence float64) error {
	return testCtx.scriptZone(testutil.PotWhitelist, text, confidence)
}

// theStackZonesRead scripts the reading shared by all stack zones.
func (testCtx *TestContext) theStackZonesRead(text string) error {
	return testCtx.scriptZone(testutil.MoneyWhitelist, text, testutil.ScriptedConfidence)
}

// theNameZonesRead scripts the reading shared by all name zones.
func (testCtx *TestContext) theNameZonesRead(text string) error {
	return testCtx.scriptZone(testutil.NameWhitelist, text, testutil.ScriptedConfidence)
}

// theTextZonesAreRecognized runs text recognition over the prepared
// frame and assembles the resulting game state.
func (testCtx *TestContext) theTextZonesAreRecognized() error {
	if testCtx.TableFrame == nil || testCtx.Engine == nil {
		return errors.New("no synthetic table frame prepared")
	}

	recognizer, err := textrec.NewRecognizer(textrec.DefaultConfig(), testCtx.Engine)
	if err != nil {
		return fmt.Errorf("failed to create text recognizer: %w", err)
	}
	defer func() { _ = recognizer.Close() }()

	zones, err := recognizer.RecognizeZones(testCtx.TableFrame, testCtx.TableProfile)
	if err != nil {
		return fmt.Errorf("text recognition failed: %w", err)
	}

	frame := &recognition.Frame{
		Timestamp:   time.Now(),
		Street:      recognition.StreetPreflop,
		TextResults: zones,
	}
	gs := state.FromFrame(frame)
	testCtx.GameState = &gs
	return nil
}

// thePotShouldBe compares the assembled pot value.
func (testCtx *TestContext) thePotShouldBe(expected float64) error {
	if testCtx.GameState == nil {
		return errors.New("no game state assembled yet")
	}
	if math.Abs(testCtx.GameState.Pot-expected) > 1e-9 {
		return fmt.Errorf("pot is %v, expected %v", testCtx.GameState.Pot, expected)
	}
	return nil
}

// theGameStateShouldHaveNoPot verifies the pot reading was rejected.
func (testCtx *TestContext) theGameStateShouldHaveNoPot() error {
	if testCtx.GameState == nil {
		return errors.New("no game state assembled yet")
	}
	if testCtx.GameState.Pot != 0 {
		return fmt.Errorf("pot is %v, expected it to stay unset", testCtx.GameState.Pot)
	}
	return nil
}

// theStackForSeatShouldBe compares one seat's stack.
func (testCtx *TestContext) theStackForSeatShouldBe(seat string, expected float64) error {
	if testCtx.GameState == nil {
		return errors.New("no game state assembled yet")
	}
	got, ok := testCtx.GameState.Stacks[seat]
	if !ok {
		return fmt.Errorf("no stack recorded for seat %q (stacks: %v)", seat, testCtx.GameState.Stacks)
	}
	if math.Abs(got-expected) > 1e-9 {
		return fmt.Errorf("stack for seat %q is %v, expected %v", seat, got, expected)
	}
	return nil
}

// theNameForSeatShouldBe compares one seat's player name.
func (testCtx *TestContext) theNameForSeatShouldBe(seat, expected string) error {
	if testCtx.GameState == nil {
		return errors.New("no game state assembled yet")
	}
	got, ok := testCtx.GameState.Names[seat]
	if !ok {
		return fmt.Errorf("no name recorded for seat %q (names: %v)", seat, testCtx.GameState.Names)
	}
	if got != expected {
		return fmt.Errorf("name for seat %q is %q, expected %q", seat, got, expected)
	}
	return nil
}

// RegisterStateSteps registers scripted OCR and game state steps.
func (testCtx *TestContext) RegisterStateSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a synthetic table frame$`, testCtx.aSyntheticTableFrame)
	sc.Step(`^the pot zone reads "([^"]*)"$`, testCtx.thePotZoneReads)
	sc.Step(`^the pot zone reads "([^"]*)" with confidence ([0-9.]+)$`, testCtx.thePotZoneReadsWithConfidence)
	sc.Step(`^the stack zones read "([^"]*)"$`, testCtx.theStackZonesRead)
	sc.Step(`^the name zones read "([^"]*)"$`, testCtx.theNameZonesRead)
	sc.Step(`^the text zones are recognized$`, testCtx.theTextZonesAreRecognized)
	sc.Step(`^the pot should be ([0-9.]+)$`, testCtx.thePotShouldBe)
	sc.Step(`^the game state should have no pot$`, testCtx.theGameStateShouldHaveNoPot)
	sc.Step(`^the stack for seat "([^"]*)" should be ([0-9.]+)$`, testCtx.theStackForSeatShouldBe)
	sc.Step(`^the name for seat "([^"]*)" should be "([^"]*)"$`, testCtx.theNameForSeatShouldBe)
}
