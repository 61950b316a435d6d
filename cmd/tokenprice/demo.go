package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fd1az/tokenprice/business/pricing/domain"
	"github.com/fd1az/tokenprice/internal/asset"
	"github.com/fd1az/tokenprice/pkg/ui"
)

// demoTokens are priced in both quote currencies by the demo command.
var demoTokens = []*asset.Asset{
	asset.WBNB,
	asset.USDT,
	asset.CAKE,
	asset.ETH,
	asset.BTCB,
}

func newDemoCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Price a fixed set of well-known tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := bootstrap(ctx, root, bootstrapOptions{logOutput: os.Stderr})
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			service := rt.pricing.Service()
			stop := ui.Spinner(fmt.Sprintf("pricing %d tokens", len(demoTokens)))

			rows := make([]ui.QuoteRow, 0, 2*len(demoTokens))
			for _, token := range demoTokens {
				for _, quote := range []domain.QuoteCurrency{domain.QuoteNative, domain.QuoteStable} {
					result, err := service.Resolve(ctx, token.Address().Hex(), quote)
					rows = append(rows, ui.QuoteRow{
						Label:  token.Symbol(),
						Quote:  quote,
						Result: result,
						Err:    err,
					})
				}
			}

			stop()

			fmt.Fprint(cmd.OutOrStdout(), ui.RenderQuotes("Demo prices", rows))
			return nil
		},
	}
}
