package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/slotmap/internal/booking"
	"github.com/roach88/slotmap/internal/model"
)

type transaction func(ctx context.Context, actor model.Account, slot model.Slot) (booking.Outcome, error)

// NewBookCommand creates the book command.
func NewBookCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "book <room> <day> <hour>",
		Short: "Reserve a slot",
		Long: `Reserve one room for one hour of the week.

Fails with ALREADY_OCCUPIED when the slot is taken. Warnings are printed
when the grid and the history log disagree about the slot.

Example:
  slotmap book 101 Mon 9AM -u alice -p s3cret`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransaction(cmd, rootOpts, args, func(a *app) transaction { return a.service.Book })
		},
	}
}

// NewCancelCommand creates the cancel command.
func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <room> <day> <hour>",
		Short: "Cancel a reservation",
		Long: `Free a slot. Regular accounts may only cancel their own bookings;
admins may cancel any booking.

Example:
  slotmap cancel 101 Mon 9AM -u alice -p s3cret`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransaction(cmd, rootOpts, args, func(a *app) transaction { return a.service.Cancel })
		},
	}
}

func runTransaction(cmd *cobra.Command, opts *RootOptions, args []string, pick func(*app) transaction) error {
	a, err := openApp(cmd, opts, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)
	actor, err := a.login(ctx, opts)
	if err != nil {
		return err
	}
	slot, err := parseSlotArgs(args)
	if err != nil {
		return a.fail(err, nil)
	}

	out, err := pick(a)(ctx, actor, slot)
	if err != nil {
		if !a.out.JSON() {
			if _, werr := a.out.Writer.Write([]byte(newStyles(a.out.Writer).renderOutcome(out, err))); werr != nil {
				return werr
			}
		}
		return a.fail(err, out)
	}
	return a.out.Print(newStyles(a.out.Writer).renderOutcome(out, nil), out)
}
