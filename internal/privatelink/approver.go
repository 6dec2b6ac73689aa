// Package privatelink discovers and approves pending private-endpoint
// connections for a deployed service.
package privatelink

import (
	"context"
	"fmt"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/console"
)

// Connection is one private-endpoint connection as reported by the platform.
// Connections are discovered fresh on every approval pass and never cached:
// the platform is the source of truth for their status.
type Connection struct {
	ID     string
	Name   string
	Status string
}

// ApprovalError reports which connection's approval was rejected. Remaining
// pending connections are left unapproved when this is returned.
type ApprovalError struct {
	Connection string
	Detail     string
}

func (e *ApprovalError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("approving private-endpoint connection %s failed", e.Connection)
	}
	return fmt.Sprintf("approving private-endpoint connection %s failed: %s", e.Connection, e.Detail)
}

// Approver drives the private-link approval handshake.
type Approver struct {
	exec azcli.Executor
	sink *console.Sink
}

// NewApprover creates an approver over the shared executor.
func NewApprover(exec azcli.Executor, sink *console.Sink) *Approver {
	return &Approver{exec: exec, sink: sink}
}

// ApprovePending lists the connections scoped to the owner resource and
// approves every one whose status is Pending, sequentially. The first
// rejected approval aborts the rest. Zero pending connections is success:
// either approval is not required for this network mode, or a previous run
// already did it.
func (a *Approver) ApprovePending(ctx context.Context, ownerResourceID string) error {
	pending, err := a.listPending(ctx, ownerResourceID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		a.sink.Infof("no pending private-endpoint connections")
		return nil
	}

	for _, conn := range pending {
		a.sink.Infof("approving private-endpoint connection %s", conn.Name)
		cmd := fmt.Sprintf("az network private-endpoint-connection approve --id %s --description Approved --output json", conn.ID)
		res := a.exec.Execute(ctx, cmd, azcli.ExecOptions{})
		if !res.Success {
			return &ApprovalError{Connection: conn.Name, Detail: azcli.ExtractErrorMessage(res.Text)}
		}
	}
	return nil
}

// listPending returns the connections in Pending state. A single returned
// object is normalized into a one-element list.
func (a *Approver) listPending(ctx context.Context, ownerResourceID string) ([]Connection, error) {
	cmd := fmt.Sprintf("az network private-endpoint-connection list --id %s --output json", ownerResourceID)
	res := a.exec.Execute(ctx, cmd, azcli.ExecOptions{})
	if !res.Success {
		return nil, fmt.Errorf("listing private-endpoint connections: %s", azcli.ExtractErrorMessage(res.Text))
	}

	var pending []Connection
	for _, v := range res.Array() {
		conn := parseConnection(v)
		if conn.Status == "Pending" {
			pending = append(pending, conn)
		}
	}
	return pending, nil
}

func parseConnection(v any) Connection {
	obj, ok := v.(map[string]any)
	if !ok {
		return Connection{}
	}
	conn := Connection{}
	conn.ID, _ = obj["id"].(string)
	conn.Name, _ = obj["name"].(string)

	// The connection status lives under the service connection state; some
	// list shapes flatten it to the top level.
	if props, ok := obj["properties"].(map[string]any); ok {
		if state, ok := props["privateLinkServiceConnectionState"].(map[string]any); ok {
			conn.Status, _ = state["status"].(string)
		}
	}
	if conn.Status == "" {
		conn.Status, _ = obj["status"].(string)
	}
	return conn
}
