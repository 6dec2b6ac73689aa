package deploy

import (
	"fmt"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/config"
)

// verifyCommon runs the checks every variant must pass: the group exists,
// the gateway service exists, and its API surface is queryable.
func verifyCommon(ctx *Context, spec *config.InfraSpec, out *Outcome) error {
	exists, err := ctx.Registry.Exists(ctx, spec)
	if err != nil {
		return &VerificationError{Check: "resource group", Detail: err.Error()}
	}
	if !exists {
		return &VerificationError{Check: "resource group", Detail: fmt.Sprintf("group %s does not exist", out.Group)}
	}

	service, ok := out.ServiceName()
	if !ok {
		return &VerificationError{Check: "gateway service", Detail: "deployment exported no serviceName output"}
	}

	show := ctx.Exec.Execute(ctx,
		fmt.Sprintf("az apim show --name %s --resource-group %s --output json", service, out.Group),
		azcli.ExecOptions{})
	if !show.Success {
		return &VerificationError{Check: "gateway service", Detail: azcli.ExtractErrorMessage(show.Text)}
	}

	// Zero APIs is fine for a fresh environment; the point is that the
	// management plane answers the query at all.
	list := ctx.Exec.Execute(ctx,
		fmt.Sprintf("az apim api list --service-name %s --resource-group %s --query length(@) --output json", service, out.Group),
		azcli.ExecOptions{})
	if !list.Success {
		return &VerificationError{Check: "api operations", Detail: azcli.ExtractErrorMessage(list.Text)}
	}
	if count, ok := list.JSON.(float64); !ok || count < 0 {
		return &VerificationError{Check: "api operations", Detail: "operation listing returned no count"}
	}
	return nil
}
