package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/slotmap/internal/model"
)

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the complete booking history (admin)",
		Long: `Show every book and cancel entry of every account in append order.
The log is read straight from the database. Requires an admin login.

Example:
  slotmap log -u admin -p admin123`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := commandContext(cmd)
			if _, err := a.loginAdmin(ctx, rootOpts, "log"); err != nil {
				return err
			}

			entries := []model.LogEntry{}
			for e, err := range a.store.Scan(ctx) {
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read log", err)
				}
				entries = append(entries, e)
			}
			return a.out.Print(newStyles(a.out.Writer).renderLog(entries), entries)
		},
	}
}
