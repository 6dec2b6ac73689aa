package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/config"
	"github.com/imamik/azdemo/internal/console"
	"github.com/imamik/azdemo/internal/deploy"
)

// stubExec answers every command with a canned result.
type stubExec struct {
	respond func(cmd string) azcli.Result
}

func (s *stubExec) Execute(_ context.Context, cmd string, _ azcli.ExecOptions) azcli.Result {
	return s.respond(cmd)
}

func jsonResult(t *testing.T, body string) azcli.Result {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return azcli.Result{Success: true, Text: body, JSON: v}
}

func swapFactories(t *testing.T, exec azcli.Executor) {
	t.Helper()
	origLoad := loadConfig
	origExec := newExecutor
	origRun := runDeployment
	t.Cleanup(func() {
		loadConfig = origLoad
		newExecutor = origExec
		runDeployment = origRun
	})

	loadConfig = func(_ string) (*config.Config, error) { return config.Default(), nil }
	newExecutor = func(_ *console.Sink) azcli.Executor { return exec }
}

func TestDeploy(t *testing.T) {
	exec := &stubExec{respond: func(_ string) azcli.Result {
		return jsonResult(t, `[]`)
	}}
	swapFactories(t, exec)

	var gotSpec *config.InfraSpec
	runDeployment = func(_ *deploy.Context, spec *config.InfraSpec) (*deploy.Outcome, error) {
		gotSpec = spec
		return &deploy.Outcome{State: deploy.StateDone, Group: "apim-infra-simple"}, nil
	}

	err := Deploy(context.Background(), "", "simple", nil)
	require.NoError(t, err)
	require.NotNil(t, gotSpec)
	require.Equal(t, config.VariantSimple, gotSpec.Variant)
	require.Nil(t, gotSpec.Index)
}

func TestDeploy_ReusesDiscoveredEnvironment(t *testing.T) {
	exec := &stubExec{respond: func(_ string) azcli.Result {
		return jsonResult(t, `["apim-infra-frontdoor-2"]`)
	}}
	swapFactories(t, exec)

	var gotSpec *config.InfraSpec
	runDeployment = func(_ *deploy.Context, spec *config.InfraSpec) (*deploy.Outcome, error) {
		gotSpec = spec
		return &deploy.Outcome{State: deploy.StateDone}, nil
	}

	err := Deploy(context.Background(), "", "frontdoor", nil)
	require.NoError(t, err)
	require.NotNil(t, gotSpec.Index)
	require.Equal(t, 2, *gotSpec.Index)
}

func TestDeploy_InvalidVariant(t *testing.T) {
	swapFactories(t, &stubExec{respond: func(_ string) azcli.Result {
		return jsonResult(t, `[]`)
	}})
	runDeployment = func(_ *deploy.Context, _ *config.InfraSpec) (*deploy.Outcome, error) {
		t.Fatal("deployment must not start for an invalid variant")
		return nil, nil
	}

	err := Deploy(context.Background(), "", "classic", nil)
	require.ErrorContains(t, err, "unknown variant")
}

func TestDeploy_SurfacesDeploymentError(t *testing.T) {
	swapFactories(t, &stubExec{respond: func(_ string) azcli.Result {
		return jsonResult(t, `[]`)
	}})
	runDeployment = func(_ *deploy.Context, _ *config.InfraSpec) (*deploy.Outcome, error) {
		return &deploy.Outcome{State: deploy.StateFailed}, context.DeadlineExceeded
	}

	err := Deploy(context.Background(), "", "simple", nil)
	require.ErrorContains(t, err, "deploy failed")
}
