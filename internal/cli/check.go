package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/slotmap/internal/reconcile"
)

// SlotCheck is the result of checking a single slot.
type SlotCheck struct {
	Slot      string               `json:"slot"`
	OK        bool                 `json:"ok"`
	Violation *reconcile.Violation `json:"violation,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [<room> <day> <hour>]",
		Short: "Compare the grid against the history log",
		Long: `Report slots where the occupancy grid and the history log disagree.

With no arguments every room is checked. With a slot only that slot is.

Exit codes:
  0 - grid and log agree
  1 - one or more violations
  2 - command error

Examples:
  slotmap check
  slotmap check 101 Mon 9AM --format json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return fmt.Errorf("accepts 0 or 3 arg(s), received %d", len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := commandContext(cmd)
			if len(args) == 3 {
				slot, err := parseSlotArgs(args)
				if err != nil {
					return a.fail(err, nil)
				}
				v, err := a.service.CheckSlot(ctx, slot)
				if err != nil {
					return a.fail(err, nil)
				}
				res := SlotCheck{Slot: slot.String(), OK: v == nil, Violation: v}
				text := fmt.Sprintf("%s %s: grid and log agree\n", iconOK, slot)
				if v != nil {
					text = fmt.Sprintf("%s %s\n", iconError, v)
				}
				if err := a.out.Print(text, res); err != nil {
					return err
				}
				if v != nil {
					return &ExitError{Code: ExitFailure, Message: v.String(), Reported: true}
				}
				return nil
			}

			rep, err := a.service.Verify(ctx)
			if err != nil {
				return a.fail(err, nil)
			}
			if rep.Violations == nil {
				rep.Violations = []reconcile.Violation{}
			}
			if err := a.out.Print(newStyles(a.out.Writer).renderReport(rep), rep); err != nil {
				return err
			}
			if !rep.OK() {
				a.logger.Warn("grid and log disagree", "violations", len(rep.Violations))
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d violation(s)", len(rep.Violations)), Reported: true}
			}
			return nil
		},
	}
}
