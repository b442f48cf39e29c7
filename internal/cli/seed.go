package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedProvider string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the standard SOL, BTC, ETH, USDC and USDT feeds",
	Long: `Create the standard feed set for every enabled provider (or only --provider).
Feeds are written at the provider's mainnet addresses where one is known.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			providers, err := s.providers(seedProvider)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range providers {
				feeds, err := p.CreateStandardFeeds()
				if err != nil {
					return fmt.Errorf("seed %s: %w", p.Name(), err)
				}
				s.log.WithField("provider", p.Name()).Info("standard feeds created")
				fmt.Fprintf(out, "%s\n", p.Name())
				fmt.Fprintf(out, "  SOL  %s\n", feeds.SOL)
				fmt.Fprintf(out, "  BTC  %s\n", feeds.BTC)
				fmt.Fprintf(out, "  ETH  %s\n", feeds.ETH)
				fmt.Fprintf(out, "  USDC %s\n", feeds.USDC)
				fmt.Fprintf(out, "  USDT %s\n", feeds.USDT)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedProvider, "provider", "", "only seed this provider")
}
