package handlers

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/config"
	"github.com/imamik/azdemo/internal/console"
	"github.com/imamik/azdemo/internal/resgroup"
	"github.com/imamik/azdemo/internal/teardown"
)

func newTestRegistry(exec azcli.Executor) *resgroup.Registry {
	return resgroup.NewRegistry(exec, config.Default(), console.New(io.Discard, console.LevelError))
}

func TestCleanup_NothingDiscovered(t *testing.T) {
	exec := &stubExec{respond: func(cmd string) azcli.Result {
		return jsonResult(t, `[]`)
	}}
	swapFactories(t, exec)

	err := Cleanup(context.Background(), "", "simple", nil, false)
	require.NoError(t, err)
}

func TestCleanup_ExplicitGroups(t *testing.T) {
	exec := &stubExec{respond: func(cmd string) azcli.Result {
		if strings.Contains(cmd, " list ") {
			return jsonResult(t, `[]`)
		}
		return azcli.Result{Success: true}
	}}
	swapFactories(t, exec)

	err := Cleanup(context.Background(), "", "", []string{"my-group"}, false)
	require.NoError(t, err)
}

func TestCleanup_FailedTargetSurfacesError(t *testing.T) {
	exec := &stubExec{respond: func(cmd string) azcli.Result {
		if strings.Contains(cmd, "az group delete") {
			return azcli.Result{Success: false, Text: "ERROR: locked"}
		}
		if strings.Contains(cmd, " list ") {
			return jsonResult(t, `[]`)
		}
		return azcli.Result{Success: true}
	}}
	swapFactories(t, exec)

	err := Cleanup(context.Background(), "", "", []string{"my-group"}, false)
	require.ErrorContains(t, err, "failed cleanup")
}

func TestResolveTargets(t *testing.T) {
	exec := &stubExec{respond: func(cmd string) azcli.Result {
		if strings.Contains(cmd, "infrastructure=simple") {
			return jsonResult(t, `["apim-infra-simple", "apim-infra-simple-1"]`)
		}
		return jsonResult(t, `[]`)
	}}
	swapFactories(t, exec)
	registry := newTestRegistry(exec)

	targets, err := resolveTargets(context.Background(), registry, "simple", []string{"extra-group"}, false)
	require.NoError(t, err)
	require.Len(t, targets, 3)

	// Explicit groups carry no deployment label.
	require.Equal(t, teardown.Target{ResourceGroup: "extra-group"}, targets[0])

	// Discovered groups are labeled for deployment-record inspection.
	require.Equal(t, "apim-infra-simple", targets[1].ResourceGroup)
	require.Equal(t, "azdemo-simple", targets[1].DeploymentLabel)
	require.Equal(t, "apim-infra-simple-1", targets[2].ResourceGroup)
}

func TestResolveTargets_All(t *testing.T) {
	var listed []string
	exec := &stubExec{respond: func(cmd string) azcli.Result {
		if strings.Contains(cmd, "az group list") {
			listed = append(listed, cmd)
		}
		return jsonResult(t, `[]`)
	}}
	swapFactories(t, exec)
	registry := newTestRegistry(exec)

	targets, err := resolveTargets(context.Background(), registry, "", nil, true)
	require.NoError(t, err)
	require.Empty(t, targets)
	// One discovery listing per known variant.
	require.Len(t, listed, 5)
}

func TestResolveTargets_InvalidVariant(t *testing.T) {
	swapFactories(t, &stubExec{respond: func(_ string) azcli.Result {
		return jsonResult(t, `[]`)
	}})
	registry := newTestRegistry(&stubExec{respond: func(_ string) azcli.Result {
		return jsonResult(t, `[]`)
	}})

	_, err := resolveTargets(context.Background(), registry, "classic", nil, false)
	require.ErrorContains(t, err, "unknown variant")
}
