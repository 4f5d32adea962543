package support

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/layout"
	"github.com/tablesight/tablesight/internal/recognition"
	"github.com/tablesight/tablesight/internal/server"
	"github.com/tablesight/tablesight/internal/testutil"
	"github.com/tablesight/tablesight/internal/textrec"
)

// stubFrameSource feeds the preview server a fixed frame and profile.
type stubFrameSource struct {
	frame   *recognition.Frame
	profile *layout.Profile
}

func (s *stubFrameSource) Peek() (*recognition.Frame, bool) { return s.frame, s.frame != nil }

func (s *stubFrameSource) Profile() *layout.Profile { return s.profile }

func confidentCard(rank, suit string) cards.CardResult {
	return cards.CardResult{
		Rank:               rank,
		Suit:               suit,
		RankConfidence:     0.95,
		SuitConfidence:     0.95,
		CombinedConfidence: 0.95,
	}
}

// riverFrame builds a fully recognized river frame for server
// scenarios.
func riverFrame() *recognition.Frame {
	return &recognition.Frame{
		Timestamp: time.Now(),
		Street:    recognition.StreetRiver,
		HeroCards: [2]cards.CardResult{
			confidentCard("A", "h"),
			confidentCard("K", "d"),
		},
		BoardCards: [5]cards.CardResult{
			confidentCard("7", "c"),
			confidentCard("8", "c"),
			confidentCard("9", "c"),
			confidentCard("2", "d"),
			confidentCard("J", "s"),
		},
		TextResults: map[string]textrec.TextResult{
			"pot": {
				Text:       "12.5",
				Confidence: testutil.ScriptedConfidence,
				Value:      textrec.NumValue(12.5),
				IsValid:    true,
			},
		},
	}
}

// startPreviewServer mounts the preview routes on an httptest server.
func (testCtx *TestContext) startPreviewServer(frame *recognition.Frame) error {
	if testCtx.HTTPServer != nil {
		testCtx.HTTPServer.Close()
	}

	source := &stubFrameSource{frame: frame, profile: testutil.TableProfile()}
	srv, err := server.NewServer(server.DefaultConfig(), source)
	if err != nil {
		return fmt.Errorf("failed to create preview server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	testCtx.HTTPServer = httptest.NewServer(mux)
	return nil
}

// thePreviewServerIsRunningWithARecognizedFrame starts the server over
// a source that already published a frame.
func (testCtx *TestContext) thePreviewServerIsRunningWithARecognizedFrame() error {
	return testCtx.startPreviewServer(riverFrame())
}

// thePreviewServerIsRunningWithoutAFrame starts the server before any
// recognition cycle completed.
func (testCtx *TestContext) thePreviewServerIsRunningWithoutAFrame() error {
	return testCtx.startPreviewServer(nil)
}

// iRequest performs a GET against the running preview server.
func (testCtx *TestContext) iRequest(path string) error {
	if testCtx.HTTPServer == nil {
		return errors.New("preview server is not running")
	}

	resp, err := http.Get(testCtx.HTTPServer.URL + path)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(body)
	testCtx.LastHTTPContentType = resp.Header.Get("Content-Type")
	return nil
}

// theResponseStatusShouldBe verifies the HTTP status code.
func (testCtx *TestContext) theResponseStatusShouldBe(code int) error {
	if testCtx.LastHTTPStatusCode != code {
		return fmt.Errorf("response status is %d, expected %d\nBody: %s",
			testCtx.LastHTTPStatusCode, code, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseShouldContain verifies the response body contains text.
func (testCtx *TestContext) theResponseShouldContain(expected string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, expected) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", expected, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseShouldBeValidJSON verifies the response body parses as
// JSON.
func (testCtx *TestContext) theResponseShouldBeValidJSON() error {
	var js json.RawMessage
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w\nBody: %s", err, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseContentTypeShouldContain verifies the Content-Type header.
func (testCtx *TestContext) theResponseContentTypeShouldContain(expected string) error {
	if !strings.Contains(testCtx.LastHTTPContentType, expected) {
		return fmt.Errorf("content type is %q, expected it to contain %q",
			testCtx.LastHTTPContentType, expected)
	}
	return nil
}

// RegisterServerSteps registers preview server steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the preview server is running with a recognized frame$`, testCtx.thePreviewServerIsRunningWithARecognizedFrame)
	sc.Step(`^the preview server is running without a frame$`, testCtx.thePreviewServerIsRunningWithoutAFrame)
	sc.Step(`^I request "([^"]*)"$`, testCtx.iRequest)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response should be valid JSON$`, testCtx.theResponseShouldBeValidJSON)
	sc.Step(`^the response content type should contain "([^"]*)"$`, testCtx.theResponseContentTypeShouldContain)
}
