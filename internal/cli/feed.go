package cli

import (
	"fmt"
	"strconv"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/LeJamon/goShadowOracle/internal/oracle/chainlink"
	"github.com/LeJamon/goShadowOracle/internal/oracle/pyth"
	"github.com/LeJamon/goShadowOracle/internal/shadow"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var (
	feedProvider    string
	feedPrice       float64
	feedConfidence  float64
	setConfidence   float64
	feedDecimals    uint8
	feedExponent    int32
	feedStatus      string
	feedDescription string
	feedAddress     string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Create, inspect and manipulate price feeds",
}

var feedCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a price feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if feedProvider == "" {
			return fmt.Errorf("--provider is required")
		}
		status, err := oracle.ParseStatus(feedStatus)
		if err != nil {
			return err
		}
		conf := oracle.NewUSD(feedPrice, feedConfidence).
			WithDecimals(feedDecimals).
			WithExponent(feedExponent).
			WithStatus(status).
			WithDescription(feedDescription)

		return withSession(cmd.Context(), func(s *session) error {
			providers, err := s.providers(feedProvider)
			if err != nil {
				return err
			}
			p := providers[0]
			var address solana.PublicKey
			if feedAddress != "" {
				if address, err = solana.PublicKeyFromBase58(feedAddress); err != nil {
					return fmt.Errorf("invalid address %q: %w", feedAddress, err)
				}
				err = p.CreatePriceFeedAt(address, conf)
			} else {
				address, err = p.CreatePriceFeed(conf)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), address)
			return nil
		})
	},
}

var feedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every feed in the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			providers, err := s.providers(feedProvider)
			if err != nil {
				return err
			}
			for _, p := range providers {
				for _, address := range p.Feeds() {
					line, err := describe(p, address)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			}
			return nil
		})
	},
}

var feedShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show the current state of a feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			address, p, err := s.feed(args[0])
			if err != nil {
				return err
			}
			line, err := describe(p, address)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		})
	},
}

// mutation builds a command that changes one feed and prints its new state.
func mutation(use, short string, nargs int, apply func(s *session, address solana.PublicKey, p shadow.Feeds, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(s *session) error {
				address, p, err := s.feed(args[0])
				if err != nil {
					return err
				}
				if err := apply(s, address, p, args[1:]); err != nil {
					return err
				}
				line, err := describe(p, address)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				return nil
			})
		},
	}
}

var feedSetCmd = mutation("set <address> <price>", "Publish a new price", 2,
	func(s *session, address solana.PublicKey, p shadow.Feeds, args []string) error {
		price, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
		return p.SetPriceUSD(address, price, setConfidence)
	})

var feedCrashCmd = mutation("crash <address> <percent>", "Drop the price by percent", 2,
	func(s *session, address solana.PublicKey, p shadow.Feeds, args []string) error {
		percent, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid percent: %w", err)
		}
		return p.SimulateCrash(address, percent)
	})

var feedDepegCmd = mutation("depeg <address> <target>", "Move a stablecoin price to target", 2,
	func(s *session, address solana.PublicKey, p shadow.Feeds, args []string) error {
		target, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid target: %w", err)
		}
		return p.SimulateDepeg(address, target)
	})

var feedStaleCmd = mutation("stale <address> <seconds>", "Backdate the feed's publish time", 2,
	func(s *session, address solana.PublicKey, p shadow.Feeds, args []string) error {
		seconds, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seconds: %w", err)
		}
		return p.MakeStale(address, seconds)
	})

var feedStatusCmd = mutation("status <address> <trading|halted|unknown|auction>", "Set a Pyth feed's trading status", 2,
	func(s *session, address solana.PublicKey, p shadow.Feeds, args []string) error {
		py, ok := p.(*pyth.Provider)
		if !ok {
			return fmt.Errorf("%s feeds have no trading status", p.Name())
		}
		status, err := oracle.ParseStatus(args[0])
		if err != nil {
			return err
		}
		return py.SetStatus(address, status)
	})

var feedRoundCmd = &cobra.Command{
	Use:   "round <address> <round-id>",
	Short: "Show a historical Chainlink round",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		round, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid round id: %w", err)
		}
		return withSession(cmd.Context(), func(s *session) error {
			address, p, err := s.feed(args[0])
			if err != nil {
				return err
			}
			cl, ok := p.(*chainlink.Provider)
			if !ok {
				return fmt.Errorf("%s feeds have no rounds", p.Name())
			}
			data, err := cl.GetRoundData(address, uint32(round))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "round=%d answer=%s ts=%d slot=%d\n", data.RoundID, data.Answer, data.Timestamp, data.Slot)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.AddCommand(feedCreateCmd, feedListCmd, feedShowCmd, feedSetCmd, feedCrashCmd,
		feedDepegCmd, feedStaleCmd, feedStatusCmd, feedRoundCmd)

	feedCmd.PersistentFlags().StringVar(&feedProvider, "provider", "", "oracle provider (pyth, switchboard, chainlink)")

	feedCreateCmd.Flags().Float64Var(&feedPrice, "price", 0, "price in USD")
	feedCreateCmd.Flags().Float64Var(&feedConfidence, "confidence", 0, "confidence interval in USD")
	feedCreateCmd.Flags().Uint8Var(&feedDecimals, "decimals", oracle.DefaultDecimals, "decimals for switchboard and chainlink")
	feedCreateCmd.Flags().Int32Var(&feedExponent, "exponent", oracle.DefaultExponent, "exponent for pyth")
	feedCreateCmd.Flags().StringVar(&feedStatus, "status", "trading", "pyth trading status")
	feedCreateCmd.Flags().StringVar(&feedDescription, "description", "", "feed description")
	feedCreateCmd.Flags().StringVar(&feedAddress, "address", "", "create at this address instead of a random one")

	feedSetCmd.Flags().Float64Var(&setConfidence, "confidence", 0, "confidence interval in USD")
}
