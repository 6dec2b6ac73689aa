package config

import (
	"fmt"
	"strings"
)

// Variant identifies one of the supported infrastructure layouts. The string
// form is stable: it appears in resource group names and in the
// infrastructure tag, and discovery depends on it bit-exactly.
type Variant string

const (
	// VariantSimple is a plain APIM instance with public access.
	VariantSimple Variant = "simple"
	// VariantContainerApps backs APIM with Azure Container Apps workloads.
	VariantContainerApps Variant = "aca"
	// VariantFrontDoor fronts a private APIM with Azure Front Door premium
	// over a private link.
	VariantFrontDoor Variant = "frontdoor"
	// VariantAppGatewayPE fronts a private APIM with Application Gateway and
	// a private endpoint.
	VariantAppGatewayPE Variant = "appgw"
	// VariantAppGatewayInternal places APIM in internal VNet mode behind
	// Application Gateway.
	VariantAppGatewayInternal Variant = "appgw-internal"
)

// Variants lists all supported variants in a stable order.
var Variants = []Variant{
	VariantSimple,
	VariantContainerApps,
	VariantFrontDoor,
	VariantAppGatewayPE,
	VariantAppGatewayInternal,
}

// ParseVariant validates and normalizes a variant string.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants {
		if v == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown variant %q (valid: %s)", s, variantList())
}

func variantList() string {
	names := make([]string, len(Variants))
	for i, v := range Variants {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// NetworkMode describes how the APIM gateway is exposed.
type NetworkMode string

const (
	// NetworkPublic exposes the gateway on the public internet.
	NetworkPublic NetworkMode = "public"
	// NetworkPrivate exposes the gateway through a private endpoint only.
	NetworkPrivate NetworkMode = "private"
	// NetworkInternal places the gateway inside a VNet in internal mode.
	NetworkInternal NetworkMode = "internal"
)

// NetworkMode returns the network exposure implied by the variant.
func (v Variant) NetworkMode() NetworkMode {
	switch v {
	case VariantFrontDoor, VariantAppGatewayPE:
		return NetworkPrivate
	case VariantAppGatewayInternal:
		return NetworkInternal
	default:
		return NetworkPublic
	}
}

// PrivateNetworking reports whether the variant requires the
// public-then-private lockdown sequence and private-link approval.
func (v Variant) PrivateNetworking() bool {
	return v.NetworkMode() != NetworkPublic
}

// UsesAppGateway reports whether the variant deploys an Application Gateway,
// which needs a vault-held TLS certificate before the main deployment.
func (v Variant) UsesAppGateway() bool {
	return v == VariantAppGatewayPE || v == VariantAppGatewayInternal
}

// InfraSpec identifies exactly one demo environment. It is resolved before
// orchestration starts and not modified afterwards, except for SuffixToken,
// which the registry fills in once per run.
type InfraSpec struct {
	Variant     Variant
	Index       *int // nil for the unindexed environment
	Location    string
	SKU         string
	NetworkMode NetworkMode

	// SuffixToken is the stable per-group token derived by
	// resgroup.Registry.SuffixToken. Empty until resolved; never persisted.
	SuffixToken string
}

// NewInfraSpec builds a spec for the given variant using the configured
// location and SKU.
func NewInfraSpec(cfg *Config, variant Variant, index *int) *InfraSpec {
	return &InfraSpec{
		Variant:     variant,
		Index:       index,
		Location:    cfg.Location,
		SKU:         cfg.SKU,
		NetworkMode: variant.NetworkMode(),
	}
}

// String renders the spec identity for log lines.
func (s *InfraSpec) String() string {
	if s.Index == nil {
		return string(s.Variant)
	}
	return fmt.Sprintf("%s-%d", s.Variant, *s.Index)
}
