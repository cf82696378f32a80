package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register <identity> <secret>",
		Short: "Create a regular account",
		Long: `Create a regular (non-admin) account.

Identity and secret must be single words. Registering an existing
identity fails with ALREADY_EXISTS.

Example:
  slotmap register alice s3cret`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			acct, err := a.service.RegisterAccount(commandContext(cmd), args[0], args[1])
			if err != nil {
				return a.fail(err, nil)
			}
			return a.out.Print(fmt.Sprintf("Registered %s (%s)\n", acct.Identity, acct.Role), acct)
		},
	}
}
