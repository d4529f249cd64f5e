// File: cmd/run_test.go
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/storefront-e2e/internal/config"
	"github.com/xkilldash9x/storefront-e2e/internal/runner"
	"github.com/xkilldash9x/storefront-e2e/internal/scenario"
)

func TestRunCmd_ReportsEveryScenario(t *testing.T) {
	sessions := &noBrowser{}
	out, err := execute(t, testDeps(sessions, newFakeStore()), "run")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScenariosFailed)
	assert.Contains(t, err.Error(), "0 of 10 failed, 10 errored")
	assert.Equal(t, 10, sessions.starts, "a startup failure never stops the run")

	assert.Equal(t, 10, strings.Count(out, "ERROR "))
	assert.Contains(t, out, "SessionStartupFailure: browser session startup failed: no chrome in this sandbox")
	assert.Contains(t, out, "10 scenarios: 0 passed, 0 failed, 10 errored")
}

func TestRunCmd_ScenarioFilter(t *testing.T) {
	sessions := &noBrowser{}
	out, err := execute(t, testDeps(sessions, newFakeStore()), "run", "--scenario", "02,logout")

	assert.ErrorIs(t, err, ErrScenariosFailed)
	assert.Equal(t, 2, sessions.starts)
	assert.Contains(t, out, "02 invalid_login")
	assert.Contains(t, out, "10 logout")
	assert.NotContains(t, out, "01 valid_login")

	_, err = execute(t, testDeps(&noBrowser{}, newFakeStore()), "run", "--scenario", "checkout_everything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrScenariosFailed)
	assert.Contains(t, err.Error(), "no scenario matches checkout_everything")
}

func TestRunCmd_WritesReportAndPersists(t *testing.T) {
	st := newFakeStore()
	path := filepath.Join(t.TempDir(), "junit.xml")

	out, err := execute(t, testDeps(&noBrowser{}, st), "run",
		"--scenario=01", "--format=junit", "--output="+path, "--database-url=postgres://ci@db/e2e")
	assert.ErrorIs(t, err, ErrScenariosFailed)
	assert.Empty(t, out, "the report went to the file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<testcase name="01 valid_login"`)
	assert.Contains(t, string(data), `type="SessionStartupFailure"`)

	require.Len(t, st.runs, 1)
	for _, r := range st.runs {
		assert.Equal(t, scenario.ContractVersion, r.ContractVersion)
		assert.Len(t, r.Results, 1)
	}
	assert.Equal(t, 1, st.created)
	assert.Equal(t, 1, st.cleaned)
}

func TestRunCmd_BadReportTargetStartsNothing(t *testing.T) {
	sessions := &noBrowser{}
	_, err := execute(t, testDeps(sessions, newFakeStore()), "run", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `format must be one of [text json junit], got "yaml"`)
	assert.Zero(t, sessions.starts)

	missing := filepath.Join(t.TempDir(), "no-such-dir", "report.json")
	_, err = execute(t, testDeps(sessions, newFakeStore()), "run", "--format=json", "--output="+missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize reporter")
	assert.Zero(t, sessions.starts)
}

func TestRunSuite_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.NewDefaultConfig()
	var out strings.Builder
	sessions := &noBrowser{}
	err := runSuite(ctx, zaptest.NewLogger(t), cfg, &out, testDeps(sessions, newFakeStore()))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sessions.starts)
	assert.Contains(t, out.String(), runner.ErrRunCanceled.Error())
}

func TestRunSuite_ShutdownAlwaysRuns(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.SuiteCfg.Include = []string{"03"}
	var shutdowns int
	deps := dependencies{
		sessions: func(config.Interface, *zap.Logger) (runner.SessionProvider, func(context.Context) error) {
			return &noBrowser{}, func(ctx context.Context) error {
				shutdowns++
				return ctx.Err()
			}
		},
		stores: newFakeStore(),
	}

	err := runSuite(context.Background(), zaptest.NewLogger(t), cfg, &strings.Builder{}, deps)
	assert.ErrorIs(t, err, ErrScenariosFailed)
	assert.Equal(t, 1, shutdowns)
}
