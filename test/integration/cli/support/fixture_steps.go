package support

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cucumber/godog"
)

// theSyntheticTestDataIsAvailable generates the synthetic fixture set
// (template pack, room profile and hand scenes) into the scenario's
// temp directory and records where everything landed.
func (testCtx *TestContext) theSyntheticTestDataIsAvailable() error {
	if testCtx.DataDir != "" {
		return nil
	}

	dataDir := filepath.Join(testCtx.TempDir, "data")

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "generate-test-data", "-out", dataDir)
	cmd.Dir = testCtx.WorkingDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to generate test data: %w\nOutput: %s", err, string(out))
	}

	testCtx.DataDir = dataDir
	testCtx.TemplatesDir = filepath.Join(dataDir, "templates")
	testCtx.ProfilePath = filepath.Join(dataDir, "profiles", "synthetic-table.yaml")
	testCtx.ScenesDir = filepath.Join(dataDir, "scenes")

	for _, required := range []string{
		testCtx.TemplatesDir,
		testCtx.ProfilePath,
		filepath.Join(testCtx.ScenesDir, "01_preflop.png"),
		filepath.Join(testCtx.ScenesDir, "04_river.png"),
	} {
		if _, err := os.Stat(required); err != nil {
			return fmt.Errorf("expected fixture missing after generation: %s: %w", required, err)
		}
	}
	return nil
}

// RegisterFixtureSteps registers fixture generation steps.
func (testCtx *TestContext) RegisterFixtureSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the synthetic test data is available$`, testCtx.theSyntheticTestDataIsAvailable)
}
