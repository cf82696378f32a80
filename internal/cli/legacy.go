package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/slotmap/internal/booking"
	"github.com/roach88/slotmap/internal/legacy"
	"github.com/roach88/slotmap/internal/reconcile"
)

// LegacyImportOptions holds flags for legacy import.
type LegacyImportOptions struct {
	*RootOptions
	Force bool
}

// LegacyImportResult reports an import and the grid/log check that follows it.
type LegacyImportResult struct {
	legacy.Report
	Violations []reconcile.Violation `json:"violations"`
}

// NewLegacyCommand creates the legacy command group.
func NewLegacyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Import or export the plain-text data files (admin)",
		Long: `Move data between the database and a directory holding the
plain-text files rooms.txt, users.txt and bookings.txt. Both directions
require an admin login.`,
	}
	cmd.AddCommand(newLegacyImportCommand(rootOpts))
	cmd.AddCommand(newLegacyExportCommand(rootOpts))
	return cmd
}

func newLegacyImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LegacyImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Load legacy text files into the database",
		Long: `Load rooms, accounts and history from a legacy data directory.

Rooms in the file overwrite stored rooms with the same id. Existing
accounts are kept and the duplicate lines reported. Malformed lines are
skipped and reported.

History lines are appended after existing log entries, so importing into
a database that already has history is refused unless --force is given.
The grid is checked against the log afterwards and any disagreement is
listed.

Example:
  slotmap legacy import ./data -u admin -p admin123`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts.RootOptions, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := commandContext(cmd)
			if _, err := a.loginAdmin(ctx, opts.RootOptions, "legacy import"); err != nil {
				return err
			}

			n, err := a.store.CountLog(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to count log entries", err)
			}
			if n > 0 && !opts.Force {
				return a.fail(&booking.Error{
					Code:    booking.CodeAlreadyExists,
					Message: fmt.Sprintf("history log already has %d entries; rerun with --force to append", n),
				}, nil)
			}

			rep, err := legacy.Import(ctx, args[0], a.store, a.logger)
			if err != nil {
				return WrapExitError(ExitCommandError, "import failed", err)
			}

			if err := a.loadService(ctx); err != nil {
				return err
			}
			check, err := a.service.Verify(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to check imported data", err)
			}
			res := LegacyImportResult{Report: rep, Violations: check.Violations}
			if res.Violations == nil {
				res.Violations = []reconcile.Violation{}
			} else {
				a.logger.Warn("imported data disagrees with the log", "violations", len(res.Violations))
			}

			text := describeTransfer("Imported", args[0], rep)
			for _, v := range res.Violations {
				text += fmt.Sprintf("  %s %s\n", iconError, v)
			}
			return a.out.Print(text, res)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "append to a non-empty history log")

	return cmd
}

func newLegacyExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "export <dir>",
		Short:         "Write the database out as legacy text files",
		Example:       `  slotmap legacy export ./backup -u admin -p admin123`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := commandContext(cmd)
			if _, err := a.loginAdmin(ctx, rootOpts, "legacy export"); err != nil {
				return err
			}

			rep, err := legacy.Export(ctx, args[0], a.store)
			if err != nil {
				return WrapExitError(ExitCommandError, "export failed", err)
			}
			return a.out.Print(describeTransfer("Exported", args[0], rep), rep)
		},
	}
}

func describeTransfer(verb, dir string, rep legacy.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d rooms, %d accounts, %d log entries\n",
		verb, dir, rep.Rooms, rep.Accounts, rep.Entries)
	if len(rep.Missing) > 0 {
		fmt.Fprintf(&b, "  missing: %s\n", strings.Join(rep.Missing, ", "))
	}
	for _, r := range rep.Rejected {
		fmt.Fprintf(&b, "  %s %s\n", iconWarning, r)
	}
	return b.String()
}
