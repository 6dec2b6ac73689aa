package deploy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/config"
)

func TestStrategyFor(t *testing.T) {
	t.Parallel()

	for _, v := range config.Variants {
		_, err := StrategyFor(v)
		require.NoError(t, err, "variant %s must have a strategy", v)
	}

	_, err := StrategyFor(config.Variant("nope"))
	require.Error(t, err)
}

func TestAppGatewayPreSteps_CreatesVaultAndCertificate(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	exec := &fakeExec{rec: rec}
	exec.respond = func(cmd string) azcli.Result {
		switch {
		case strings.Contains(cmd, "azdemo-suffix-probe"):
			return jsonResult(t, `{"properties": {"outputs": {"suffix": {"value": "`+testSuffix+`"}}}}`)
		case strings.Contains(cmd, "az keyvault show"):
			return failResult("ERROR: not found")
		case strings.Contains(cmd, "az keyvault certificate show"):
			// Missing on the first probe, present after creation.
			if rec.indexOf("az keyvault certificate create") < 0 {
				return failResult("ERROR: not found")
			}
			return jsonResult(t, `{"sid": "https://apim-kv-`+testSuffix+`.vault.azure.net/secrets/gateway-cert/v1"}`)
		default:
			return jsonResult(t, `{}`)
		}
	}
	ctx := testContext(t, rec, exec)
	spec := config.NewInfraSpec(ctx.Config, config.VariantAppGatewayPE, nil)
	strategy, err := StrategyFor(spec.Variant)
	require.NoError(t, err)

	require.NoError(t, strategy.PreSteps(ctx, spec))
	require.GreaterOrEqual(t, rec.indexOf("az keyvault create", "apim-kv-"+testSuffix), 0)
	require.GreaterOrEqual(t, rec.indexOf("az keyvault certificate create", "gateway-cert"), 0)

	params, err := strategy.BuildParameters(ctx, spec, true)
	require.NoError(t, err)
	require.Equal(t, "https://apim-kv-"+testSuffix+".vault.azure.net/secrets/gateway-cert/v1", params["certificateSecretId"])
	require.Equal(t, "Enabled", params["publicNetworkAccess"])
	require.NotContains(t, params, "virtualNetworkType")
}

func TestAppGatewayPreSteps_ReusesExistingVaultAndCertificate(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	exec := &fakeExec{rec: rec}
	exec.respond = func(cmd string) azcli.Result {
		switch {
		case strings.Contains(cmd, "azdemo-suffix-probe"):
			return jsonResult(t, `{"properties": {"outputs": {"suffix": {"value": "`+testSuffix+`"}}}}`)
		case strings.Contains(cmd, "az keyvault certificate show"):
			return jsonResult(t, `{"sid": "https://kv.vault.azure.net/secrets/gateway-cert/v7"}`)
		default:
			return jsonResult(t, `{}`)
		}
	}
	ctx := testContext(t, rec, exec)
	spec := config.NewInfraSpec(ctx.Config, config.VariantAppGatewayInternal, nil)
	strategy, err := StrategyFor(spec.Variant)
	require.NoError(t, err)

	require.NoError(t, strategy.PreSteps(ctx, spec))
	require.Equal(t, -1, rec.indexOf("az keyvault create"))
	require.Equal(t, -1, rec.indexOf("az keyvault certificate create"))
	require.Equal(t, "https://kv.vault.azure.net/secrets/gateway-cert/v7", ctx.gatewayCertSecretID)
}

func TestAppGatewayInternalParameters(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	exec := &fakeExec{rec: rec, respond: happyResponder(t)}
	ctx := testContext(t, rec, exec)
	ctx.gatewayCertSecretID = "https://kv/secrets/c/1"
	spec := config.NewInfraSpec(ctx.Config, config.VariantAppGatewayInternal, nil)

	params, err := appGatewayStrategy{internal: true}.BuildParameters(ctx, spec, false)
	require.NoError(t, err)
	require.Equal(t, "Internal", params["virtualNetworkType"])
	require.NotContains(t, params, "publicNetworkAccess")
}

func TestContainerAppsVerify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		count   string
		wantErr bool
	}{
		{name: "backends present", count: "2", wantErr: false},
		{name: "no backends", count: "0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &recorder{}
			exec := &fakeExec{rec: rec}
			exec.respond = func(cmd string) azcli.Result {
				if strings.Contains(cmd, "az containerapp list") {
					return jsonResult(t, tt.count)
				}
				return jsonResult(t, `{}`)
			}
			ctx := testContext(t, rec, exec)
			spec := config.NewInfraSpec(ctx.Config, config.VariantContainerApps, nil)
			out := &Outcome{Group: "apim-infra-aca"}

			err := containerAppsStrategy{}.VerifySpecific(ctx, spec, out)
			if tt.wantErr {
				var verr *VerificationError
				require.ErrorAs(t, err, &verr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFrontDoorVerify_NoConnections(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	exec := &fakeExec{rec: rec}
	exec.respond = func(cmd string) azcli.Result {
		if strings.Contains(cmd, "private-endpoint-connection list") {
			return jsonResult(t, `0`)
		}
		return jsonResult(t, `{}`)
	}
	ctx := testContext(t, rec, exec)
	spec := config.NewInfraSpec(ctx.Config, config.VariantFrontDoor, nil)
	out := &Outcome{Group: "apim-infra-frontdoor", Result: deploymentOutputs(t)}

	err := frontDoorStrategy{}.VerifySpecific(ctx, spec, out)
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "private-endpoint connections", verr.Check)
}
