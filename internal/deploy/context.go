// Package deploy implements the per-variant provisioning state machine.
package deploy

import (
	"context"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/config"
	"github.com/imamik/azdemo/internal/console"
	"github.com/imamik/azdemo/internal/privatelink"
	"github.com/imamik/azdemo/internal/resgroup"
)

// Context wraps the dependencies a deployment step needs. One Context serves
// one Deploy call; nothing in it is shared across runs.
type Context struct {
	context.Context
	Config   *config.Config
	Exec     azcli.Executor
	Registry *resgroup.Registry
	Approver ConnectionApprover
	Probe    Prober
	Sink     *console.Sink
	Timeouts *config.Timeouts

	// RunID correlates every resource tagged by this run.
	RunID string

	// gatewayCertSecretID carries the vault secret id of the gateway TLS
	// certificate from the App Gateway pre-steps into parameter building.
	gatewayCertSecretID string
}

// ConnectionApprover is the private-link approval collaborator.
// Implemented by privatelink.Approver.
type ConnectionApprover interface {
	ApprovePending(ctx context.Context, ownerResourceID string) error
}

// Prober performs the best-effort connectivity check against a deployed
// gateway. Failures are advisory; the orchestrator logs and continues.
type Prober interface {
	Check(ctx context.Context, gatewayURL string) error
}

var _ ConnectionApprover = (*privatelink.Approver)(nil)
