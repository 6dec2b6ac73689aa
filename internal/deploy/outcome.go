package deploy

import "github.com/imamik/azdemo/internal/azcli"

// State is a position in the deployment state machine. Failed is reachable
// from every other state.
type State string

const (
	StateInit                 State = "Init"
	StateGroupReady           State = "GroupReady"
	StateTemplateDeployed     State = "TemplateDeployed"
	StatePrivateLinkApproved  State = "PrivateLinkApproved"
	StateConnectivityChecked  State = "ConnectivityChecked"
	StatePublicAccessDisabled State = "PublicAccessDisabled"
	StateVerified             State = "Verified"
	StateDone                 State = "Done"
	StateFailed               State = "Failed"
)

// Outcome aggregates the final deployment result and its named outputs. It is
// owned by the Deploy call that produced it.
type Outcome struct {
	State  State
	Group  string
	Result azcli.Result
}

// Output looks up a named deployment output value.
func (o *Outcome) Output(name string) (string, bool) {
	return o.Result.LookupString("properties", "outputs", name, "value")
}

// GatewayURL returns the deployed gateway endpoint, when the template
// exported one.
func (o *Outcome) GatewayURL() (string, bool) { return o.Output("gatewayUrl") }

// ServiceID returns the APIM service resource id.
func (o *Outcome) ServiceID() (string, bool) { return o.Output("serviceId") }

// ServiceName returns the APIM service name.
func (o *Outcome) ServiceName() (string, bool) { return o.Output("serviceName") }
