// Package resgroup provides deterministic naming, tag-based discovery and
// suffix-token derivation for demo resource groups.
package resgroup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/azdemo/internal/config"
)

// Resource group naming scheme. All provisioned groups follow these patterns
// so that environments can be located without any local state. The index is
// rendered as a plain decimal integer, negative values included, with no
// zero-padding; an absent index omits the trailing dash entirely.

// InfraGroupName renders the name of an infrastructure group.
func InfraGroupName(prefix string, variant config.Variant, index *int) string {
	if index == nil {
		return fmt.Sprintf("%s-%s", prefix, variant)
	}
	return fmt.Sprintf("%s-%s-%d", prefix, variant, *index)
}

// SampleGroupName renders the name of a sample group.
func SampleGroupName(prefix, label string, index *int) string {
	if index == nil {
		return fmt.Sprintf("%s-%s", prefix, label)
	}
	return fmt.Sprintf("%s-%s-%d", prefix, label, *index)
}

// ParseInfraGroupName inverts InfraGroupName for a known prefix and variant.
// It reports false for names that do not belong to the scheme; such names are
// skipped by discovery, never treated as errors.
func ParseInfraGroupName(prefix string, variant config.Variant, name string) (index *int, ok bool) {
	base := InfraGroupName(prefix, variant, nil)
	rest, found := strings.CutPrefix(name, base)
	if !found {
		return nil, false
	}
	if rest == "" {
		return nil, true
	}
	digits, found := strings.CutPrefix(rest, "-")
	if !found {
		return nil, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil, false
	}
	return &n, true
}
