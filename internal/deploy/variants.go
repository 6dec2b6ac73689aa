package deploy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/config"
)

// Strategy supplies the variant-specific pieces of a deployment: template
// parameters, extra pre-deployment steps, and variant-specific verification.
// Everything else — the state machine itself — is shared.
type Strategy interface {
	// BuildParameters returns the template parameters for this variant.
	// publicAccess is true for the initial deployment and false for the
	// lockdown redeploy.
	BuildParameters(ctx *Context, spec *config.InfraSpec, publicAccess bool) (map[string]any, error)

	// PreSteps runs before the main template deployment. A failure here
	// halts the run before any billable compute is created.
	PreSteps(ctx *Context, spec *config.InfraSpec) error

	// VerifySpecific runs the variant's own post-deployment checks, after
	// the common ones.
	VerifySpecific(ctx *Context, spec *config.InfraSpec, out *Outcome) error
}

// StrategyFor returns the strategy for a variant.
func StrategyFor(v config.Variant) (Strategy, error) {
	switch v {
	case config.VariantSimple:
		return simpleStrategy{}, nil
	case config.VariantContainerApps:
		return containerAppsStrategy{}, nil
	case config.VariantFrontDoor:
		return frontDoorStrategy{}, nil
	case config.VariantAppGatewayPE:
		return appGatewayStrategy{}, nil
	case config.VariantAppGatewayInternal:
		return appGatewayStrategy{internal: true}, nil
	default:
		return nil, fmt.Errorf("no strategy for variant %q", v)
	}
}

// baseParameters are shared by every variant.
func baseParameters(ctx *Context, spec *config.InfraSpec) (map[string]any, error) {
	suffix, err := ctx.Registry.SuffixToken(ctx, spec)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"location":       spec.Location,
		"skuName":        spec.SKU,
		"resourceSuffix": suffix,
	}, nil
}

type simpleStrategy struct{}

func (simpleStrategy) BuildParameters(ctx *Context, spec *config.InfraSpec, _ bool) (map[string]any, error) {
	return baseParameters(ctx, spec)
}

func (simpleStrategy) PreSteps(*Context, *config.InfraSpec) error { return nil }

func (simpleStrategy) VerifySpecific(*Context, *config.InfraSpec, *Outcome) error { return nil }

type containerAppsStrategy struct{}

func (containerAppsStrategy) BuildParameters(ctx *Context, spec *config.InfraSpec, _ bool) (map[string]any, error) {
	return baseParameters(ctx, spec)
}

func (containerAppsStrategy) PreSteps(*Context, *config.InfraSpec) error { return nil }

// VerifySpecific confirms that the container-app backends actually came up.
func (containerAppsStrategy) VerifySpecific(ctx *Context, spec *config.InfraSpec, out *Outcome) error {
	cmd := fmt.Sprintf("az containerapp list --resource-group %s --query length(@) --output json", out.Group)
	res := ctx.Exec.Execute(ctx, cmd, azcli.ExecOptions{})
	if !res.Success {
		return &VerificationError{Check: "container app backends", Detail: azcli.ExtractErrorMessage(res.Text)}
	}
	count, ok := res.JSON.(float64)
	if !ok || count < 1 {
		return &VerificationError{Check: "container app backends", Detail: "no container apps in group"}
	}
	return nil
}

type frontDoorStrategy struct{}

func (frontDoorStrategy) BuildParameters(ctx *Context, spec *config.InfraSpec, publicAccess bool) (map[string]any, error) {
	params, err := baseParameters(ctx, spec)
	if err != nil {
		return nil, err
	}
	params["publicNetworkAccess"] = accessValue(publicAccess)
	return params, nil
}

func (frontDoorStrategy) PreSteps(*Context, *config.InfraSpec) error { return nil }

// VerifySpecific confirms the approved private-endpoint connection is in
// place behind the Front Door profile.
func (frontDoorStrategy) VerifySpecific(ctx *Context, spec *config.InfraSpec, out *Outcome) error {
	serviceID, ok := out.ServiceID()
	if !ok {
		return &VerificationError{Check: "private-endpoint connections", Detail: "deployment exported no serviceId output"}
	}
	cmd := fmt.Sprintf("az network private-endpoint-connection list --id %s --query length(@) --output json", serviceID)
	res := ctx.Exec.Execute(ctx, cmd, azcli.ExecOptions{})
	if !res.Success {
		return &VerificationError{Check: "private-endpoint connections", Detail: azcli.ExtractErrorMessage(res.Text)}
	}
	count, ok := res.JSON.(float64)
	if !ok || count < 1 {
		return &VerificationError{Check: "private-endpoint connections", Detail: "no connections on the service"}
	}
	return nil
}

// appGatewayStrategy covers both the private-endpoint and internal-VNet
// Application Gateway variants; they differ only in the network mode the
// template receives.
type appGatewayStrategy struct {
	internal bool
}

const gatewayCertificateName = "gateway-cert"

// selfSignedCertPolicy is the minimal issuance policy for the demo TLS
// certificate the Application Gateway listener requires.
const selfSignedCertPolicy = `{
  "issuerParameters": { "name": "Self" },
  "keyProperties": { "exportable": true, "keySize": 2048, "keyType": "RSA", "reuseKey": false },
  "secretProperties": { "contentType": "application/x-pkcs12" },
  "x509CertificateProperties": { "subject": "CN=azdemo-gateway", "validityInMonths": 12 }
}
`

func (s appGatewayStrategy) BuildParameters(ctx *Context, spec *config.InfraSpec, publicAccess bool) (map[string]any, error) {
	params, err := baseParameters(ctx, spec)
	if err != nil {
		return nil, err
	}
	if s.internal {
		params["virtualNetworkType"] = "Internal"
	} else {
		params["publicNetworkAccess"] = accessValue(publicAccess)
	}
	params["certificateSecretId"] = ctx.gatewayCertSecretID
	return params, nil
}

// PreSteps ensures the secrets vault exists and holds the self-signed
// gateway certificate before anything billable is deployed.
func (s appGatewayStrategy) PreSteps(ctx *Context, spec *config.InfraSpec) error {
	suffix, err := ctx.Registry.SuffixToken(ctx, spec)
	if err != nil {
		return err
	}
	group := ctx.Registry.GroupName(spec)
	vault := fmt.Sprintf("apim-kv-%s", suffix)

	show := ctx.Exec.Execute(ctx,
		fmt.Sprintf("az keyvault show --name %s --resource-group %s --output json", vault, group),
		azcli.ExecOptions{SuppressErrorLog: true})
	if !show.Success {
		create := ctx.Exec.Execute(ctx,
			fmt.Sprintf("az keyvault create --name %s --resource-group %s --location %s --output json", vault, group, spec.Location),
			azcli.ExecOptions{})
		if !create.Success {
			return &CommandError{Step: StateGroupReady, Result: create}
		}
	}

	certShow := ctx.Exec.Execute(ctx,
		fmt.Sprintf("az keyvault certificate show --vault-name %s --name %s --output json", vault, gatewayCertificateName),
		azcli.ExecOptions{SuppressErrorLog: true})
	if !certShow.Success {
		policyPath, err := writeCertPolicy()
		if err != nil {
			return err
		}
		defer os.RemoveAll(filepath.Dir(policyPath))

		create := ctx.Exec.Execute(ctx,
			fmt.Sprintf("az keyvault certificate create --vault-name %s --name %s --policy @%s --output json", vault, gatewayCertificateName, policyPath),
			azcli.ExecOptions{})
		if !create.Success {
			return &CommandError{Step: StateGroupReady, Result: create}
		}
		certShow = ctx.Exec.Execute(ctx,
			fmt.Sprintf("az keyvault certificate show --vault-name %s --name %s --output json", vault, gatewayCertificateName),
			azcli.ExecOptions{})
		if !certShow.Success {
			return &CommandError{Step: StateGroupReady, Result: certShow}
		}
	}

	sid, ok := certShow.LookupString("sid")
	if !ok {
		return fmt.Errorf("certificate %s in vault %s has no secret id", gatewayCertificateName, vault)
	}
	ctx.gatewayCertSecretID = sid
	return nil
}

// VerifySpecific confirms the Application Gateway resource exists.
func (s appGatewayStrategy) VerifySpecific(ctx *Context, spec *config.InfraSpec, out *Outcome) error {
	suffix, err := ctx.Registry.SuffixToken(ctx, spec)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("apim-agw-%s", suffix)
	cmd := fmt.Sprintf("az network application-gateway show --name %s --resource-group %s --output json", name, out.Group)
	res := ctx.Exec.Execute(ctx, cmd, azcli.ExecOptions{})
	if !res.Success {
		return &VerificationError{Check: "application gateway", Detail: azcli.ExtractErrorMessage(res.Text)}
	}
	return nil
}

func accessValue(public bool) string {
	if public {
		return "Enabled"
	}
	return "Disabled"
}

func writeCertPolicy() (string, error) {
	dir, err := os.MkdirTemp("", "azdemo-certpolicy-")
	if err != nil {
		return "", fmt.Errorf("creating cert policy dir: %w", err)
	}
	path := filepath.Join(dir, "policy.json")
	if err := os.WriteFile(path, []byte(selfSignedCertPolicy), 0o600); err != nil {
		return "", fmt.Errorf("writing cert policy: %w", err)
	}
	return path, nil
}
