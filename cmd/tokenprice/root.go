package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "tokenprice",
		Short: "Resolve BEP-20 token prices from on-chain liquidity",
		Long: `tokenprice resolves the price of a BNB Smart Chain token in the native
coin or a USD stablecoin. It tries the quote tokens themselves, then
PancakeSwap V2 routes, then PancakeSwap V3 pools, and finally the
DexScreener aggregator. A token no venue can price is reported as
unresolved.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override app.log_level (debug, info, warn, error)")

	cmd.AddCommand(
		newPriceCmd(flags),
		newDemoCmd(flags),
		newServeCmd(flags),
	)

	return cmd
}
