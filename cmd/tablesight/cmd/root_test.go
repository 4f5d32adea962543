package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight/internal/testutil"
)

// executeCommand runs the root command with args and captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return strings.TrimSpace(buf.String()), err
}

func writeTestProfile(t *testing.T) string {
	t.Helper()

	doc := `name: test-room
client_size:
  width: 1280
  height: 720
regions:
  pot:
    rect: {x: 0.45, y: 0.40, w: 0.10, h: 0.05}
    kind: text
    ocr:
      semantics: pot
  hero_card_1:
    rect: {x: 0.42, y: 0.70, w: 0.06, h: 0.10}
    kind: card
`
	path := filepath.Join(t.TempDir(), "room.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "tablesight", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommandHelp(t *testing.T) {
	output, err := executeCommand(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "Available Commands:")
	assert.Contains(t, output, "recognize")
}

func TestRootCommandSubcommands(t *testing.T) {
	commandNames := make([]string, 0, len(rootCmd.Commands()))
	for _, subcmd := range rootCmd.Commands() {
		commandNames = append(commandNames, subcmd.Name())
	}

	expectedCommands := []string{"recognize", "watch", "serve", "profile", "templates", "version"}
	for _, expected := range expectedCommands {
		assert.Contains(t, commandNames, expected, "Expected subcommand '%s' not found", expected)
	}
}

func TestRootCommandVersionFlag(t *testing.T) {
	output, err := executeCommand(t, "--version")
	require.NoError(t, err)

	assert.Contains(t, output, "tablesight")
	assert.Contains(t, output, "commit:")
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(t, "version")
	require.NoError(t, err)

	assert.Contains(t, output, "tablesight")
	assert.Contains(t, output, "built:")
}

func TestProfileValidateCommand(t *testing.T) {
	path := writeTestProfile(t)

	output, err := executeCommand(t, "profile", "validate", path)
	require.NoError(t, err)

	assert.Contains(t, output, "is valid")
	assert.Contains(t, output, "test-room")
	assert.Contains(t, output, "regions: 2 (1 card, 1 text)")
}

func TestProfileValidateRejectsBadProfile(t *testing.T) {
	doc := `name: broken
regions:
  pot:
    rect: {x: 0.9, y: 0.4, w: 0.5, h: 0.05}
    kind: text
`
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	_, err := executeCommand(t, "profile", "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit square")
}

func TestProfileShowCommand(t *testing.T) {
	path := writeTestProfile(t)

	output, err := executeCommand(t, "profile", "show", path)
	require.NoError(t, err)

	assert.Contains(t, output, "Profile: test-room")
	assert.Contains(t, output, "Reference size: 1280x720")
	assert.Contains(t, output, "hero_card_1")
	assert.Contains(t, output, "[pot]")
}

func TestProfileShowJSON(t *testing.T) {
	path := writeTestProfile(t)

	output, err := executeCommand(t, "profile", "show", path, "--format", "json")
	require.NoError(t, err)

	assert.Contains(t, output, `"name": "test-room"`)
	assert.Contains(t, output, `"kind": "card"`)
	assert.Contains(t, output, `"semantics": "pot"`)
}

func TestTemplatesListCommand(t *testing.T) {
	dir := testutil.BuildTemplateDir(t)

	output, err := executeCommand(t, "templates", "list", dir)
	require.NoError(t, err)

	assert.Contains(t, output, "Loaded 13 rank and 4 suit templates")
	assert.Contains(t, output, "ranks: 10 2 3 4 5 6 7 8 9 A J K Q")
	assert.Contains(t, output, "suits: c d h s")
}

func TestTemplatesCheckCommand(t *testing.T) {
	dir := testutil.BuildTemplateDir(t)

	output, err := executeCommand(t, "templates", "check", dir)
	require.NoError(t, err)

	assert.Contains(t, output, "Template coverage OK")
}

func TestTemplatesCheckMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	_, err := executeCommand(t, "templates", "check", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template directory")
}

func TestRecognizeNoArgs(t *testing.T) {
	_, err := executeCommand(t, "recognize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files provided")
}

func TestRecognizeRequiresProfile(t *testing.T) {
	_, err := executeCommand(t, "recognize", "table.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room profile is required")
}

// Keep this case last: the mode flags stay changed for the rest of the
// process.
func TestRecognizeConflictingModes(t *testing.T) {
	_, err := executeCommand(t, "recognize", "table.png", "--cards-only", "--text-only")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}
