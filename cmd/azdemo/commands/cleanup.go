package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azdemo/cmd/azdemo/handlers"
)

// Cleanup returns the cleanup command.
//
// The cleanup command tears down demo environments discovered by their
// infrastructure tag, or explicitly named resource groups. Soft-deleting
// services (APIM, Key Vault, Cognitive Services) are deleted and purged
// before the group itself is removed.
func Cleanup() *cobra.Command {
	var (
		configPath string
		variant    string
		groups     []string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Tear down demo environments",
		Long: `Cleanup tears down demo environments.

Targets are discovered by the infrastructure tag on their resource groups,
never by name. Each target's soft-deleting services are deleted and purged
with bounded concurrency, and the group delete is always submitted, even
when individual resources fail.

Re-running cleanup is safe: resources that are already gone simply list as
absent.

Examples:
  azdemo cleanup --variant frontdoor
  azdemo cleanup --all
  azdemo cleanup --group apim-infra-simple-3 --group apim-infra-appgw

WARNING: This operation is irreversible.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Cleanup(cmd.Context(), configPath, variant, groups, all)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to azdemo configuration file")
	cmd.Flags().StringVar(&variant, "variant", "", "Tear down all environments of one variant")
	cmd.Flags().StringArrayVar(&groups, "group", nil, "Tear down an explicitly named resource group (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Tear down every environment of every variant")

	return cmd
}
