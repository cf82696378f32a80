package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/slotmap/internal/grid"
	"github.com/roach88/slotmap/internal/model"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Department string
	Category   string
	FreeOnly   bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <day> <hour>",
		Short: "Show which rooms are free at a slot",
		Long: `Show room availability at one day and hour, answered from the grid.

Day accepts short or full names in any case (Mon, monday). Hour accepts
12-hour input such as 9AM, "9 am" or 12PM.

Examples:
  slotmap search Mon 9AM
  slotmap search tue "2 pm" --department CSE --category lab --free`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts.RootOptions, false)
			if err != nil {
				return err
			}
			defer a.Close()

			q := grid.Query{Department: opts.Department}
			if q.Day, err = model.ParseDay(args[0]); err != nil {
				return a.fail(invalidInput("%v", err), nil)
			}
			if q.Hour, err = model.ParseHour(args[1]); err != nil {
				return a.fail(invalidInput("%v", err), nil)
			}
			if opts.Category != "" {
				if q.Category, err = model.ParseCategory(opts.Category); err != nil {
					return a.fail(invalidInput("%v", err), nil)
				}
			}

			hits := []grid.Availability{}
			for _, h := range a.service.Search(q) {
				if opts.FreeOnly && !h.Free {
					continue
				}
				hits = append(hits, h)
			}
			return a.out.Print(newStyles(a.out.Writer).renderSearch(q, hits), hits)
		},
	}

	cmd.Flags().StringVar(&opts.Department, "department", "", "filter by department")
	cmd.Flags().StringVar(&opts.Category, "category", "", "filter by category (lab|general)")
	cmd.Flags().BoolVar(&opts.FreeOnly, "free", false, "only list free rooms")

	return cmd
}
