package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/slotmap/internal/booking"
	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/reconcile"
)

// BookingsOptions holds flags for the bookings command.
type BookingsOptions struct {
	*RootOptions
	All bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [identity]",
		Short: "Show an account's booking history",
		Long: `Show every book and cancel entry made by an account, in log order.
Bookings that another account later cancelled are marked.

Without an argument the logged-in account's history is shown. Admins may
name any account.

Examples:
  slotmap history -u alice -p s3cret
  slotmap history bob -u admin -p admin123`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := commandContext(cmd)
			actor, err := a.login(ctx, rootOpts)
			if err != nil {
				return err
			}
			who, err := subject(actor, args)
			if err != nil {
				return a.fail(err, nil)
			}

			items, err := a.service.HistoryFor(ctx, who)
			if err != nil {
				return a.fail(err, nil)
			}
			if items == nil {
				items = []reconcile.HistoryItem{}
			}
			return a.out.Print(newStyles(a.out.Writer).renderHistory(who, items), items)
		},
	}
}

// NewBookingsCommand creates the bookings command.
func NewBookingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BookingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bookings [identity]",
		Short: "List slots currently held",
		Long: `List the slots an account currently holds: the grid marks them
occupied and the log's last action on them is that account's booking.

Admins may name another account or pass --all.

Examples:
  slotmap bookings -u alice -p s3cret
  slotmap bookings --all -u admin -p admin123`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts.RootOptions, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := commandContext(cmd)
			actor, err := a.login(ctx, opts.RootOptions)
			if err != nil {
				return err
			}

			var who string
			if opts.All {
				if !actor.IsAdmin() {
					return a.fail(&booking.Error{Code: booking.CodePermissionDenied, Message: "--all requires an admin account"}, nil)
				}
			} else if who, err = subject(actor, args); err != nil {
				return a.fail(err, nil)
			}

			list, err := a.service.ActiveBookings(ctx, who)
			if err != nil {
				return a.fail(err, nil)
			}
			if list == nil {
				list = []reconcile.Booking{}
			}
			return a.out.Print(newStyles(a.out.Writer).renderBookings(list), list)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "list every account's bookings (admin)")

	return cmd
}

// subject resolves whose records a query reads: the caller by default, or
// the named account when the caller is an admin.
func subject(actor model.Account, args []string) (string, error) {
	if len(args) == 0 || args[0] == actor.Identity {
		return actor.Identity, nil
	}
	if !actor.IsAdmin() {
		return "", &booking.Error{
			Code:    booking.CodePermissionDenied,
			Message: fmt.Sprintf("%s may not read records of %s", actor.Identity, args[0]),
		}
	}
	return args[0], nil
}
