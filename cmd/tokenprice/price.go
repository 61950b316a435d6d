package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fd1az/tokenprice/business/pricing/app"
	"github.com/fd1az/tokenprice/business/pricing/domain"
	"github.com/fd1az/tokenprice/pkg/ui"
)

func newPriceCmd(root *rootFlags) *cobra.Command {
	var (
		quote  string
		noV3   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "price <token-address>",
		Short: "Resolve the price of one token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			q, err := domain.ParseQuoteCurrency(quote)
			if err != nil {
				return err
			}

			rt, err := bootstrap(ctx, root, bootstrapOptions{logOutput: os.Stderr})
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			var opts []app.ResolveOption
			if noV3 {
				opts = append(opts, app.WithoutV3())
			}

			result, err := rt.pricing.Service().Resolve(ctx, args[0], q, opts...)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprint(cmd.OutOrStdout(), ui.RenderQuotes("Token price", []ui.QuoteRow{{
				Label:  args[0],
				Quote:  q,
				Result: result,
			}}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&quote, "quote", "q", string(domain.QuoteNative), "quote currency: native or stable")
	cmd.Flags().BoolVar(&noV3, "no-v3", false, "skip the PancakeSwap V3 tier")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}
