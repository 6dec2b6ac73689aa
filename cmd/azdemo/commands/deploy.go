package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azdemo/cmd/azdemo/handlers"
)

// Deploy returns the deploy command.
//
// The deploy command provisions one demo environment: it creates the tagged
// resource group, applies the variant's Bicep template, and for private
// variants runs the private-link approval and public-access lockdown
// sequence before verification.
func Deploy() *cobra.Command {
	var (
		configPath string
		variant    string
		index      int
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Provision a demo environment",
		Long: `Deploy provisions one APIM demo environment.

Variants:
  simple          plain APIM, public access
  aca             APIM backed by Azure Container Apps
  frontdoor       private APIM behind Azure Front Door premium
  appgw           private APIM behind Application Gateway (private endpoint)
  appgw-internal  APIM in internal VNet mode behind Application Gateway

Private variants are first deployed with public network access enabled so
the private-link handshake can be approved, then redeployed with public
access disabled.

Example:
  azdemo deploy --variant frontdoor --index 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var idx *int
			if cmd.Flags().Changed("index") {
				idx = &index
			}
			return handlers.Deploy(cmd.Context(), configPath, variant, idx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to azdemo configuration file")
	cmd.Flags().StringVar(&variant, "variant", "", "Infrastructure variant to deploy (required)")
	cmd.Flags().IntVar(&index, "index", 0, "Environment index; omit for the unindexed environment")
	_ = cmd.MarkFlagRequired("variant")

	return cmd
}
