package resgroup

import (
	"context"
	"fmt"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/config"
	"github.com/imamik/azdemo/internal/console"
)

// InfrastructureTag is the tag key every provisioned group carries; discovery
// relies solely on this tag, not on naming.
const InfrastructureTag = "infrastructure"

// SourceTag marks groups as provisioned by this tool.
const SourceTag = "source"

// SourceTagValue is the fixed provenance marker.
const SourceTagValue = "azdemo"

// Discovered is one resource group found by tag-based discovery.
type Discovered struct {
	Name    string
	Variant config.Variant
	Index   *int // nil for the unindexed environment
}

// Registry locates and names demo resource groups.
type Registry struct {
	exec azcli.Executor
	cfg  *config.Config
	sink *console.Sink
}

// NewRegistry creates a registry over the shared executor.
func NewRegistry(exec azcli.Executor, cfg *config.Config, sink *console.Sink) *Registry {
	return &Registry{exec: exec, cfg: cfg, sink: sink}
}

// GroupName renders the group name for a spec using the configured prefix.
func (r *Registry) GroupName(spec *config.InfraSpec) string {
	return InfraGroupName(r.cfg.InfraPrefix, spec.Variant, spec.Index)
}

// Discover lists all groups tagged infrastructure=<variant> and parses their
// indexes from the naming scheme. Names that carry the tag but do not follow
// the scheme are skipped silently: the tag says what the group is, the name
// says which instance it is, and a group without a parseable name cannot be
// addressed by a spec.
func (r *Registry) Discover(ctx context.Context, variant config.Variant) ([]Discovered, error) {
	cmd := fmt.Sprintf("az group list --tag %s=%s --query [].name --output json",
		InfrastructureTag, variant)
	res := r.exec.Execute(ctx, cmd, azcli.ExecOptions{})
	if !res.Success {
		return nil, fmt.Errorf("listing %s groups: %s", variant, azcli.ExtractErrorMessage(res.Text))
	}

	var found []Discovered
	for _, v := range res.Array() {
		name, ok := v.(string)
		if !ok {
			continue
		}
		index, ok := ParseInfraGroupName(r.cfg.InfraPrefix, variant, name)
		if !ok {
			r.sink.Debugf("skipping tagged group with foreign name: %s", name)
			continue
		}
		found = append(found, Discovered{Name: name, Variant: variant, Index: index})
	}
	return found, nil
}

// Exists reports whether the group for the spec currently exists.
func (r *Registry) Exists(ctx context.Context, spec *config.InfraSpec) (bool, error) {
	cmd := fmt.Sprintf("az group exists --name %s --output json", r.GroupName(spec))
	res := r.exec.Execute(ctx, cmd, azcli.ExecOptions{})
	if !res.Success {
		return false, fmt.Errorf("checking group %s: %s", r.GroupName(spec), azcli.ExtractErrorMessage(res.Text))
	}
	exists, _ := res.JSON.(bool)
	return exists, nil
}
