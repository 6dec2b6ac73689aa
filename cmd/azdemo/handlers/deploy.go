// Package handlers contains the execution logic behind the CLI commands.
package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/config"
	"github.com/imamik/azdemo/internal/console"
	"github.com/imamik/azdemo/internal/deploy"
	"github.com/imamik/azdemo/internal/execlock"
	"github.com/imamik/azdemo/internal/privatelink"
	"github.com/imamik/azdemo/internal/resgroup"
)

// Factory function variables - can be replaced in tests.
var (
	loadConfig = config.LoadFile

	newExecutor = func(sink *console.Sink) azcli.Executor {
		return azcli.NewRunner(sink, execlock.New(""))
	}

	runDeployment = deploy.Run
)

// newSink builds the shared output sink from the environment log level.
func newSink() *console.Sink {
	return console.New(os.Stdout, console.ParseLevel(config.LogLevel()))
}

// Deploy handles the deploy command.
//
// It resolves which environment slot the request addresses from the
// discovered state, then runs the deployment state machine for that spec.
func Deploy(ctx context.Context, configPath, variantStr string, index *int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	variant, err := config.ParseVariant(variantStr)
	if err != nil {
		return err
	}

	sink := newSink()
	exec := newExecutor(sink)
	registry := resgroup.NewRegistry(exec, cfg, sink)

	discovered, err := registry.Discover(ctx, variant)
	if err != nil {
		return err
	}
	resolution := resgroup.Resolve(index, discovered)
	if resolution.Exists {
		sink.Infof("reusing existing %s environment", variant)
	}

	spec := config.NewInfraSpec(cfg, variant, resolution.Index)
	timeouts := config.LoadTimeouts()

	dctx := &deploy.Context{
		Context:  ctx,
		Config:   cfg,
		Exec:     exec,
		Registry: registry,
		Approver: privatelink.NewApprover(exec, sink),
		Probe:    deploy.NewHTTPProbe(nil, timeouts, sink),
		Sink:     sink,
		Timeouts: timeouts,
		RunID:    uuid.NewString(),
	}

	out, err := runDeployment(dctx, spec)
	if err != nil {
		return fmt.Errorf("deploy failed: %w", err)
	}

	if url, ok := out.GatewayURL(); ok {
		sink.Infof("gateway: %s", url)
	}
	return nil
}
