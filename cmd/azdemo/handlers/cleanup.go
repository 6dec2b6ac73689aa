package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/imamik/azdemo/internal/config"
	"github.com/imamik/azdemo/internal/deploy"
	"github.com/imamik/azdemo/internal/resgroup"
	"github.com/imamik/azdemo/internal/teardown"
)

// newEngine is replaced in tests.
var newEngine = teardown.NewEngine

// Cleanup handles the cleanup command.
//
// Targets come from explicit --group flags, or from tag-based discovery of
// one variant (--variant) or all of them (--all). Explicit groups carry no
// deployment label; discovered ones do.
func Cleanup(ctx context.Context, configPath, variantStr string, groups []string, all bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	sink := newSink()
	exec := newExecutor(sink)
	registry := resgroup.NewRegistry(exec, cfg, sink)

	targets, err := resolveTargets(ctx, registry, variantStr, groups, all)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		sink.Infof("nothing to clean up")
		return nil
	}

	summary := newEngine(exec, sink).Cleanup(ctx, targets)
	summary.Render(os.Stdout)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d target(s) failed cleanup", summary.Failed, len(summary.Reports))
	}
	return nil
}

// resolveTargets turns the cleanup flags into the list of teardown targets.
func resolveTargets(ctx context.Context, registry *resgroup.Registry, variantStr string, groups []string, all bool) ([]teardown.Target, error) {
	var targets []teardown.Target

	for _, g := range groups {
		targets = append(targets, teardown.Target{ResourceGroup: g})
	}

	var variants []config.Variant
	switch {
	case all:
		variants = config.Variants
	case variantStr != "":
		v, err := config.ParseVariant(variantStr)
		if err != nil {
			return nil, err
		}
		variants = []config.Variant{v}
	}

	for _, v := range variants {
		discovered, err := registry.Discover(ctx, v)
		if err != nil {
			return nil, err
		}
		for _, d := range discovered {
			targets = append(targets, teardown.Target{
				ResourceGroup:   d.Name,
				DeploymentLabel: deploy.DeploymentName(d.Variant),
			})
		}
	}

	return targets, nil
}
