package recognition

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight/internal/capture"
	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/testutil"
	"github.com/tablesight/tablesight/internal/textrec"
)

// stubSource returns a fixed frame or error on every capture.
type stubSource struct {
	frame  *image.RGBA
	err    error
	closed bool
}

func (s *stubSource) CaptureFrame() (*image.RGBA, error) { return s.frame, s.err }

func (s *stubSource) Bounds() image.Rectangle {
	if s.frame == nil {
		return image.Rectangle{}
	}
	return s.frame.Bounds()
}

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

func testBuilder(t *testing.T, engine textrec.Engine, src capture.Source) *Builder {
	t.Helper()
	return NewBuilder().
		WithProfile(testutil.TableProfile()).
		WithTemplates(testutil.DeckStore(t)).
		WithEngine(engine).
		WithCapture(src)
}

func TestBuilderValidate(t *testing.T) {
	src := &stubSource{frame: testutil.NewTableFrame()}

	err := NewBuilder().Validate()
	assert.ErrorContains(t, err, "profile is required")

	err = NewBuilder().WithProfile(testutil.TableProfile()).Validate()
	assert.ErrorContains(t, err, "template store is required")

	err = NewBuilder().
		WithProfile(testutil.TableProfile()).
		WithTemplates(testutil.DeckStore(t)).
		Validate()
	assert.ErrorContains(t, err, "capture source is required")

	assert.NoError(t, testBuilder(t, testutil.NewScriptedEngine(), src).Validate())
}

func TestBuilderIntervalGuard(t *testing.T) {
	b := NewBuilder().WithInterval(0).WithInterval(-time.Second)
	assert.Equal(t, DefaultInterval, b.interval)

	b.WithInterval(2 * time.Second)
	assert.Equal(t, 2*time.Second, b.interval)
}

func TestBuildRejectsBadConfigs(t *testing.T) {
	src := &stubSource{frame: testutil.NewTableFrame()}

	badCards := cards.DefaultConfig()
	badCards.CanonicalSize = 0
	_, err := testBuilder(t, testutil.NewScriptedEngine(), src).
		WithCardConfig(badCards).
		Build()
	assert.ErrorContains(t, err, "init card recognizer")

	badText := textrec.DefaultConfig()
	badText.MinDetectionConfidence = -1
	_, err = testBuilder(t, testutil.NewScriptedEngine(), src).
		WithTextConfig(badText).
		Build()
	assert.ErrorContains(t, err, "init text recognizer")
}

func TestRunOncePublishesFrame(t *testing.T) {
	profile := testutil.TableProfile()
	scen := testutil.TableScenario{
		Hero:  [2]string{"Ah", "Kd"},
		Board: []string{"7c", "8c", "9c"},
		Texts: map[string]string{"pot": "Pot 12.50"},
	}
	frame := scen.BuildFrame(t, profile)
	engine := scen.ScriptEngine(t, profile)

	o, err := NewBuilder().
		WithProfile(profile).
		WithTemplates(testutil.DeckStore(t)).
		WithEngine(engine).
		WithCapture(&stubSource{frame: frame}).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, o.Close()) }()

	published, err := o.RunOnce(frame)
	require.NoError(t, err)

	assert.Equal(t, StreetFlop, published.Street)
	assert.Equal(t, "Ah", published.HeroCards[0].Label())
	assert.Equal(t, "Kd", published.HeroCards[1].Label())
	assert.Equal(t, "7c", published.BoardCards[0].Label())
	assert.Equal(t, "9c", published.BoardCards[2].Label())
	assert.False(t, published.BoardCards[3].Present())
	assert.False(t, published.BoardCards[4].Present())

	require.Len(t, published.TextResults, 4)
	pot := published.TextResults["pot"]
	assert.True(t, pot.IsValid)
	require.True(t, pot.Value.IsNum)
	assert.InDelta(t, 12.50, pot.Value.Num, 1e-9)
	assert.False(t, published.TextResults["stack_1"].IsValid)

	assert.False(t, published.Timestamp.IsZero())
	assert.Equal(t, time.UTC, published.Timestamp.Location())

	peeked, ok := o.Peek()
	require.True(t, ok)
	assert.Same(t, published, peeked)
}

func TestRunOnceTracksStreetAcrossFrames(t *testing.T) {
	profile := testutil.TableProfile()
	flop := testutil.TableScenario{Board: []string{"7c", "8c", "9c"}}.BuildFrame(t, profile)
	felt := testutil.NewTableFrame()

	o, err := testBuilder(t, testutil.NewScriptedEngine(), &stubSource{frame: felt}).Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, o.Close()) }()

	first, err := o.RunOnce(flop)
	require.NoError(t, err)
	assert.Equal(t, StreetFlop, first.Street)

	// An empty board starts the next hand.
	second, err := o.RunOnce(felt)
	require.NoError(t, err)
	assert.Equal(t, StreetPreflop, second.Street)
}

func TestRunOnceNilFrame(t *testing.T) {
	o, err := testBuilder(t, testutil.NewScriptedEngine(), &stubSource{frame: testutil.NewTableFrame()}).Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, o.Close()) }()

	_, err = o.RunOnce(nil)
	assert.ErrorContains(t, err, "nil")
}

func TestRunLoopPublishesUntilCancelled(t *testing.T) {
	profile := testutil.TableProfile()
	scen := testutil.TableScenario{
		Board: []string{"7c", "8c", "9c"},
		Texts: map[string]string{"pot": "Pot 3.00"},
	}
	frame := scen.BuildFrame(t, profile)
	engine := scen.ScriptEngine(t, profile)
	src, err := capture.NewStaticSource(frame)
	require.NoError(t, err)

	o, err := NewBuilder().
		WithProfile(profile).
		WithTemplates(testutil.DeckStore(t)).
		WithEngine(engine).
		WithCapture(src).
		WithInterval(10 * time.Millisecond).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, o.Close()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err = o.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	published, ok := o.Peek()
	require.True(t, ok)
	assert.Equal(t, StreetFlop, published.Street)
	assert.NotEmpty(t, engine.Calls())
}

func TestRunSkipsFailedCaptures(t *testing.T) {
	engine := testutil.NewScriptedEngine()
	src := &stubSource{err: errors.New("display sleeping")}

	o, err := testBuilder(t, engine, src).
		WithInterval(5 * time.Millisecond).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, o.Close()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = o.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, ok := o.Peek()
	assert.False(t, ok)
	assert.Empty(t, engine.Calls())
}

func TestRunTreatsNilFrameAsMissing(t *testing.T) {
	// A source that returns neither frame nor error must not reach the
	// recognizers.
	o, err := testBuilder(t, testutil.NewScriptedEngine(), &stubSource{}).
		WithInterval(5 * time.Millisecond).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, o.Close()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = o.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, ok := o.Peek()
	assert.False(t, ok)
}

func TestOrchestratorClose(t *testing.T) {
	engine := testutil.NewScriptedEngine()
	src := &stubSource{frame: testutil.NewTableFrame()}

	o, err := testBuilder(t, engine, src).WithInterval(time.Second).Build()
	require.NoError(t, err)

	assert.Equal(t, time.Second, o.Interval())
	assert.Equal(t, "synthetic-table", o.Profile().Name)

	require.NoError(t, o.Close())
	assert.True(t, engine.Closed())
	assert.True(t, src.closed)

	// Idempotent.
	require.NoError(t, o.Close())
}

func TestOrchestratorClosePropagatesEngineError(t *testing.T) {
	boom := errors.New("backend teardown failed")
	engine := testutil.NewScriptedEngine().FailCloseWith(boom)
	src := &stubSource{frame: testutil.NewTableFrame()}

	o, err := testBuilder(t, engine, src).Build()
	require.NoError(t, err)

	assert.ErrorIs(t, o.Close(), boom)
	assert.True(t, src.closed, "source must close even when the engine fails")
}
