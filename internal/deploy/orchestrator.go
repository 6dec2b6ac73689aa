package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/imamik/azdemo/internal/azcli"
	"github.com/imamik/azdemo/internal/config"
	"github.com/imamik/azdemo/internal/resgroup"
)

// Run drives the deployment state machine for one infrastructure spec:
//
//	Init → GroupReady → TemplateDeployed →
//	    [PrivateLinkApproved → ConnectivityChecked → PublicAccessDisabled] →
//	Verified → Done
//
// The bracketed states are only visited by variants with private networking.
// The first failing step stops the machine and returns the outcome holding
// the last command result; there is no rollback — cleanup is a separate,
// explicit operation.
func Run(ctx *Context, spec *config.InfraSpec) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{State: StateInit, Group: ctx.Registry.GroupName(spec)}

	strategy, err := StrategyFor(spec.Variant)
	if err != nil {
		return failAt(out, StateInit, err)
	}

	ctx.Sink.Infof("deploying %s into %s", spec, out.Group)

	if err := ensureGroup(ctx, spec, out.Group); err != nil {
		return failAt(out, StateInit, err)
	}
	out.State = StateGroupReady

	if err := strategy.PreSteps(ctx, spec); err != nil {
		return failAt(out, StateGroupReady, err)
	}

	// Private variants deploy with public access enabled first: the
	// private-link handshake cannot be approved against an endpoint that has
	// no public listener yet.
	params, err := strategy.BuildParameters(ctx, spec, true)
	if err != nil {
		return failAt(out, StateGroupReady, err)
	}
	res, err := deployTemplate(ctx, spec, out.Group, params)
	out.Result = res
	if err != nil {
		return failAt(out, StateGroupReady, err)
	}
	out.State = StateTemplateDeployed

	if spec.Variant.PrivateNetworking() {
		if err := lockdown(ctx, spec, strategy, out); err != nil {
			return failAt(out, out.State, err)
		}
	}

	if err := verifyCommon(ctx, spec, out); err != nil {
		return failAt(out, out.State, err)
	}
	if err := strategy.VerifySpecific(ctx, spec, out); err != nil {
		return failAt(out, out.State, err)
	}
	out.State = StateVerified

	out.State = StateDone
	ctx.Sink.Infof("%s ready in %v", out.Group, time.Since(start).Round(time.Second))
	return out, nil
}

// lockdown runs the private-networking tail of the machine: approve the
// private-link handshake, probe connectivity, then redeploy with public
// access disabled.
func lockdown(ctx *Context, spec *config.InfraSpec, strategy Strategy, out *Outcome) error {
	serviceID, ok := out.ServiceID()
	if !ok {
		return &VerificationError{Check: "private link", Detail: "deployment exported no serviceId output"}
	}
	if err := ctx.Approver.ApprovePending(ctx, serviceID); err != nil {
		return err
	}
	out.State = StatePrivateLinkApproved

	// The probe is advisory: a cold gateway or a propagating DNS record is
	// normal this early, so failures are warnings, never fatal.
	if url, ok := out.GatewayURL(); ok && ctx.Probe != nil {
		if err := ctx.Probe.Check(ctx, url); err != nil {
			ctx.Sink.Warnf("connectivity probe failed (continuing): %v", err)
		}
	}
	out.State = StateConnectivityChecked

	params, err := strategy.BuildParameters(ctx, spec, false)
	if err != nil {
		return err
	}
	res, err := deployTemplate(ctx, spec, out.Group, params)
	out.Result = res
	if err != nil {
		return err
	}
	out.State = StatePublicAccessDisabled
	return nil
}

// ensureGroup creates the resource group, tagging it for discovery. Group
// creation is idempotent on the platform side.
func ensureGroup(ctx *Context, spec *config.InfraSpec, group string) error {
	cmd := fmt.Sprintf("az group create --name %s --location %s --tags %s=%s %s=%s run=%s --output json",
		group, spec.Location,
		resgroup.InfrastructureTag, spec.Variant,
		resgroup.SourceTag, resgroup.SourceTagValue,
		ctx.RunID)
	res := ctx.Exec.Execute(ctx, cmd, azcli.ExecOptions{})
	if !res.Success {
		return &CommandError{Step: StateInit, Result: res}
	}
	return nil
}

// deployTemplate writes the parameter file and applies the variant's main
// template to the group.
func deployTemplate(ctx *Context, spec *config.InfraSpec, group string, params map[string]any) (azcli.Result, error) {
	paramPath, err := writeParameterFile(params)
	if err != nil {
		return azcli.Result{}, err
	}
	defer os.RemoveAll(filepath.Dir(paramPath))

	template := filepath.Join(ctx.Config.TemplateDir, string(spec.Variant), "main.bicep")
	cmd := fmt.Sprintf("az deployment group create --resource-group %s --name %s --template-file %s --parameters @%s --output json",
		group, DeploymentName(spec.Variant), template, paramPath)

	res := ctx.Exec.Execute(ctx, cmd, azcli.ExecOptions{InjectDebug: ctx.Sink.Verbose()})
	if !res.Success {
		return res, &CommandError{Step: StateTemplateDeployed, Result: res}
	}
	return res, nil
}

// DeploymentName is the label of the main deployment record inside the
// group; teardown inspects it by this name.
func DeploymentName(v config.Variant) string {
	return fmt.Sprintf("azdemo-%s", v)
}

func failAt(out *Outcome, last State, err error) (*Outcome, error) {
	out.State = StateFailed
	return out, fmt.Errorf("deployment failed after %s: %w", last, err)
}
