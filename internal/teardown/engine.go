package teardown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/console"
)

// maxTargetWorkers bounds how many resource groups are torn down at once.
const maxTargetWorkers = 4

// maxResourceWorkers bounds per-resource teardown concurrency inside one
// target.
const maxResourceWorkers = 5

// Engine tears down one or many resource groups. Each target is processed by
// exactly one worker end-to-end; nothing is shared across targets except the
// executor and the sink, which carry their own locks.
type Engine struct {
	exec azcli.Executor
	sink *console.Sink
}

// NewEngine creates a teardown engine over the shared executor.
func NewEngine(exec azcli.Executor, sink *console.Sink) *Engine {
	return &Engine{exec: exec, sink: sink}
}

// Cleanup tears down every target and returns one terminal report per
// target. One target's failure never stops the others, and completion order
// is whatever the scheduler produces. A single target runs synchronously
// without a pool.
func (e *Engine) Cleanup(ctx context.Context, targets []Target) Summary {
	switch len(targets) {
	case 0:
		return Summary{}
	case 1:
		t := targets[0]
		rep := e.cleanupTarget(ctx, t, console.WorkerTag(t.ResourceGroup, 0))
		return summarize([]Report{rep})
	}

	reports := make([]Report, len(targets))

	var g errgroup.Group
	g.SetLimit(min(len(targets), maxTargetWorkers))
	for i, t := range targets {
		tag := console.WorkerTag(t.ResourceGroup, i)
		g.Go(func() error {
			reports[i] = e.cleanupTarget(ctx, t, tag)
			return nil
		})
	}
	// Workers never return errors; failures live in their reports.
	_ = g.Wait()

	return summarize(reports)
}

// cleanupTarget runs the whole teardown of one resource group. The group
// delete is submitted from a defer so it happens exactly once no matter how
// the earlier steps went — inspection and listing failures must never leave
// a group behind.
func (e *Engine) cleanupTarget(ctx context.Context, t Target, tag console.Tag) (rep Report) {
	start := time.Now()
	rep.Group = t.ResourceGroup

	defer func() {
		if err := e.deleteGroup(ctx, t.ResourceGroup, tag); err != nil {
			rep.Err = errors.Join(rep.Err, err)
		}
		rep.Duration = time.Since(start)
		if rep.Err == nil {
			e.sink.Printf(console.LevelInfo, tag, "done in %v", rep.Duration.Round(time.Second))
		} else {
			e.sink.Printf(console.LevelWarn, tag, "finished with failures: %v", rep.Err)
		}
	}()

	e.inspectDeployment(ctx, t, tag)

	resources := e.listResources(ctx, t.ResourceGroup, tag)
	if len(resources) == 0 {
		return rep
	}

	failed := e.teardownResources(ctx, resources, tag)
	if len(failed) > 0 {
		rep.Err = &PartialCleanupError{Group: t.ResourceGroup, Failed: failed}
	}
	return rep
}

// inspectDeployment logs the state of the main deployment record for the
// operator's benefit. Best-effort: a missing or unreadable record changes
// nothing about the teardown.
func (e *Engine) inspectDeployment(ctx context.Context, t Target, tag console.Tag) {
	if t.DeploymentLabel == "" {
		return
	}
	cmd := fmt.Sprintf("az deployment group show --resource-group %s --name %s --output json",
		t.ResourceGroup, t.DeploymentLabel)
	res := e.exec.Execute(ctx, cmd, azcli.ExecOptions{SuppressErrorLog: true})
	if !res.Success {
		e.sink.Printf(console.LevelDebug, tag, "deployment record %s not readable", t.DeploymentLabel)
		return
	}
	if state, ok := res.LookupString("properties", "provisioningState"); ok {
		e.sink.Printf(console.LevelInfo, tag, "deployment %s was %s", t.DeploymentLabel, state)
	}
}

// listResources discovers the managed resources of every known kind in the
// group. Each kind is a separate listing; an empty or failed listing means
// nothing of that kind.
func (e *Engine) listResources(ctx context.Context, group string, tag console.Tag) []Resource {
	var resources []Resource
	for _, kind := range kinds {
		res := e.exec.Execute(ctx, listCommand(kind, group), azcli.ExecOptions{SuppressErrorLog: true})
		if !res.Success {
			e.sink.Printf(console.LevelDebug, tag, "listing %s: nothing found", kind)
			continue
		}
		for _, v := range res.Array() {
			obj, ok := v.(map[string]any)
			if !ok {
				continue
			}
			name, _ := obj["name"].(string)
			location, _ := obj["location"].(string)
			if name == "" {
				continue
			}
			resources = append(resources, Resource{Kind: kind, Name: name, Location: location, Group: group})
		}
	}
	e.sink.Printf(console.LevelInfo, tag, "%d managed resource(s) to tear down", len(resources))
	return resources
}

// teardownResources deletes and purges the discovered resources with bounded
// concurrency, returning the names of the ones that failed. One resource's
// failure never blocks its siblings, and a resource whose delete failed is
// never purged.
func (e *Engine) teardownResources(ctx context.Context, resources []Resource, tag console.Tag) []string {
	var (
		mu     sync.Mutex
		failed []string
	)

	var g errgroup.Group
	g.SetLimit(min(len(resources), maxResourceWorkers))
	for _, r := range resources {
		g.Go(func() error {
			if err := e.teardownResource(ctx, r, tag); err != nil {
				mu.Lock()
				failed = append(failed, fmt.Sprintf("%s/%s", r.Kind, r.Name))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return failed
}

// teardownResource deletes one resource and, only when the delete succeeded,
// purges its soft-deleted remainder. No retry either way.
func (e *Engine) teardownResource(ctx context.Context, r Resource, tag console.Tag) error {
	e.sink.Printf(console.LevelInfo, tag, "deleting %s %s", r.Kind, r.Name)
	del := e.exec.Execute(ctx, deleteCommand(r), azcli.ExecOptions{SuppressErrorLog: true})
	if !del.Success {
		e.sink.Printf(console.LevelWarn, tag, "delete of %s %s failed: %s",
			r.Kind, r.Name, azcli.ExtractErrorMessage(del.Text))
		return fmt.Errorf("delete %s/%s failed", r.Kind, r.Name)
	}

	purge := e.exec.Execute(ctx, purgeCommand(r), azcli.ExecOptions{SuppressErrorLog: true})
	if !purge.Success {
		e.sink.Printf(console.LevelWarn, tag, "purge of %s %s failed: %s",
			r.Kind, r.Name, azcli.ExtractErrorMessage(purge.Text))
		return fmt.Errorf("purge %s/%s failed", r.Kind, r.Name)
	}
	return nil
}

// deleteGroup submits the non-blocking delete of the group itself.
func (e *Engine) deleteGroup(ctx context.Context, group string, tag console.Tag) error {
	e.sink.Printf(console.LevelInfo, tag, "deleting resource group")
	cmd := fmt.Sprintf("az group delete --name %s --yes --no-wait", group)
	res := e.exec.Execute(ctx, cmd, azcli.ExecOptions{SuppressErrorLog: true})
	if !res.Success {
		return fmt.Errorf("group delete failed: %s", azcli.ExtractErrorMessage(res.Text))
	}
	return nil
}

func listCommand(kind Kind, group string) string {
	switch kind {
	case KindApim:
		return fmt.Sprintf("az apim list --resource-group %s --output json", group)
	case KindKeyVault:
		return fmt.Sprintf("az keyvault list --resource-group %s --output json", group)
	default:
		return fmt.Sprintf("az cognitiveservices account list --resource-group %s --output json", group)
	}
}

func deleteCommand(r Resource) string {
	switch r.Kind {
	case KindApim:
		return fmt.Sprintf("az apim delete --name %s --resource-group %s --yes", r.Name, r.Group)
	case KindKeyVault:
		return fmt.Sprintf("az keyvault delete --name %s --resource-group %s", r.Name, r.Group)
	default:
		return fmt.Sprintf("az cognitiveservices account delete --name %s --resource-group %s", r.Name, r.Group)
	}
}

func purgeCommand(r Resource) string {
	switch r.Kind {
	case KindApim:
		return fmt.Sprintf("az apim deletedservice purge --service-name %s --location %s", r.Name, r.Location)
	case KindKeyVault:
		return fmt.Sprintf("az keyvault purge --name %s --location %s", r.Name, r.Location)
	default:
		return fmt.Sprintf("az cognitiveservices account purge --name %s --resource-group %s --location %s", r.Name, r.Group, r.Location)
	}
}
