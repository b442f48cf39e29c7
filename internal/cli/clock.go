package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	advanceSeconds int64
	advanceSlots   uint64
)

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Inspect and move the ledger clock",
}

var clockShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current slot and timestamp",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			printClock(cmd, s)
			return nil
		})
	},
}

var clockAdvanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Move the clock forward by --seconds and/or --slots",
	Long: `Move the clock forward. --slots also moves the time by 400ms per slot;
--seconds moves only the time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if advanceSeconds < 0 {
			return fmt.Errorf("--seconds must be non-negative")
		}
		return withSession(cmd.Context(), func(s *session) error {
			if advanceSlots > 0 {
				if err := s.ledger.AdvanceSlots(cmd.Context(), advanceSlots); err != nil {
					return err
				}
			}
			if advanceSeconds > 0 {
				if err := s.ledger.AdvanceTime(cmd.Context(), time.Duration(advanceSeconds)*time.Second); err != nil {
					return err
				}
			}
			printClock(cmd, s)
			return nil
		})
	},
}

var clockWarpCmd = &cobra.Command{
	Use:   "warp <slot>",
	Short: "Jump to a slot without moving the time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid slot: %w", err)
		}
		return withSession(cmd.Context(), func(s *session) error {
			if err := s.ledger.WarpToSlot(cmd.Context(), slot); err != nil {
				return err
			}
			printClock(cmd, s)
			return nil
		})
	},
}

func printClock(cmd *cobra.Command, s *session) {
	c := s.ledger.Clock()
	fmt.Fprintf(cmd.OutOrStdout(), "slot=%d unix_timestamp=%d (%s)\n",
		c.Slot, c.UnixTimestamp, time.Unix(c.UnixTimestamp, 0).UTC().Format(time.RFC3339))
}

func init() {
	rootCmd.AddCommand(clockCmd)
	clockCmd.AddCommand(clockShowCmd, clockAdvanceCmd, clockWarpCmd)

	clockAdvanceCmd.Flags().Int64Var(&advanceSeconds, "seconds", 0, "seconds to advance")
	clockAdvanceCmd.Flags().Uint64Var(&advanceSlots, "slots", 0, "slots to advance")
}
