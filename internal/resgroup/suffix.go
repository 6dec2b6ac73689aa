package resgroup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/config"
)

// suffixProbeTemplate is a side-effect-free Bicep template whose only output
// is the deterministic per-group token. uniqueString is a pure hash of the
// subscription and group identity, so redeploying it never changes anything
// cloud-side and always yields the same token for the same group.
const suffixProbeTemplate = `output suffix string = substring(uniqueString(subscription().subscriptionId, resourceGroup().id), 0, 8)
`

// suffixDeploymentName is the fixed name of the probe deployment record.
const suffixDeploymentName = "azdemo-suffix-probe"

// SuffixToken derives the stable per-group suffix token used to name
// resources inside the group. The token is cached on the spec for the rest of
// the run; it is never persisted.
func (r *Registry) SuffixToken(ctx context.Context, spec *config.InfraSpec) (string, error) {
	if spec.SuffixToken != "" {
		return spec.SuffixToken, nil
	}

	path, err := writeSuffixTemplate()
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(filepath.Dir(path))

	cmd := fmt.Sprintf("az deployment group create --resource-group %s --name %s --template-file %s --output json",
		r.GroupName(spec), suffixDeploymentName, path)
	res := r.exec.Execute(ctx, cmd, azcli.ExecOptions{})
	if !res.Success {
		return "", fmt.Errorf("deriving suffix token for %s: %s", r.GroupName(spec), azcli.ExtractErrorMessage(res.Text))
	}

	token, ok := res.LookupString("properties", "outputs", "suffix", "value")
	if !ok || token == "" {
		return "", fmt.Errorf("suffix probe for %s returned no output", r.GroupName(spec))
	}

	spec.SuffixToken = token
	return token, nil
}

func writeSuffixTemplate() (string, error) {
	dir, err := os.MkdirTemp("", "azdemo-suffix-")
	if err != nil {
		return "", fmt.Errorf("creating suffix template dir: %w", err)
	}
	path := filepath.Join(dir, "suffix.bicep")
	if err := os.WriteFile(path, []byte(suffixProbeTemplate), 0o600); err != nil {
		return "", fmt.Errorf("writing suffix template: %w", err)
	}
	return path, nil
}
