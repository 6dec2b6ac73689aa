// Package teardown implements bounded-concurrency cleanup of demo resource
// groups, including purge of soft-deleted services.
package teardown

import (
	"fmt"
	"strings"
)

// Target is one resource group scheduled for teardown. It lives from the
// moment cleanup is requested until its worker finishes; outcomes are
// recorded, never retried automatically.
type Target struct {
	ResourceGroup   string
	DeploymentLabel string
}

// Kind enumerates the managed-resource kinds that need explicit delete and
// purge before the group itself goes away. These services soft-delete by
// default; skipping the purge would keep their names reserved.
type Kind string

const (
	KindApim              Kind = "apim"
	KindKeyVault          Kind = "keyvault"
	KindCognitiveServices Kind = "cognitiveservices"
)

// kinds lists all managed-resource kinds in listing order.
var kinds = []Kind{KindApim, KindKeyVault, KindCognitiveServices}

// Resource is one discovered managed resource. It is consumed exactly once
// by the per-resource teardown step and then discarded.
type Resource struct {
	Kind     Kind
	Name     string
	Location string
	Group    string
}

// PartialCleanupError reports resources that failed delete or purge. The
// group delete is still attempted when this is produced; partial failure
// never abandons the group.
type PartialCleanupError struct {
	Group  string
	Failed []string
}

func (e *PartialCleanupError) Error() string {
	return fmt.Sprintf("%d resource(s) failed teardown in %s: %s",
		len(e.Failed), e.Group, strings.Join(e.Failed, ", "))
}
