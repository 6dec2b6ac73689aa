package deploy

import (
	"fmt"

	"github.com/imamik/azdemo/internal/azcli"
)

// CommandError reports a deployment step whose underlying command failed.
// The raw Result is carried for inspection; Error renders the extracted
// one-liner.
type CommandError struct {
	Step   State
	Result azcli.Result
}

func (e *CommandError) Error() string {
	msg := azcli.ExtractErrorMessage(e.Result.Text)
	if msg == "" {
		msg = "command failed"
	}
	return fmt.Sprintf("%s: %s", e.Step, msg)
}

// VerificationError reports a post-deployment check that did not hold.
type VerificationError struct {
	Check  string
	Detail string
}

func (e *VerificationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("verification failed: %s", e.Check)
	}
	return fmt.Sprintf("verification failed: %s: %s", e.Check, e.Detail)
}
