package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/slotmap/internal/booking"
	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/provision"
)

// RoomsOptions holds flags for rooms list.
type RoomsOptions struct {
	*RootOptions
	Department string
	Category   string
}

// RoomImportResult reports a catalog import.
type RoomImportResult struct {
	Added    []model.RoomID `json:"added"`
	Existing []model.RoomID `json:"existing"`
}

// NewRoomsCommand creates the rooms command group.
func NewRoomsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List, inspect and provision rooms",
	}
	cmd.AddCommand(newRoomsListCommand(rootOpts))
	cmd.AddCommand(newRoomsShowCommand(rootOpts))
	cmd.AddCommand(newRoomsAddCommand(rootOpts))
	cmd.AddCommand(newRoomsImportCommand(rootOpts))
	return cmd
}

func newRoomsListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RoomsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List rooms",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts.RootOptions, false)
			if err != nil {
				return err
			}
			defer a.Close()

			var category model.Category
			if opts.Category != "" {
				if category, err = model.ParseCategory(opts.Category); err != nil {
					return a.fail(invalidInput("%v", err), nil)
				}
			}

			rooms := []model.Room{}
			for _, r := range a.service.Rooms() {
				if opts.Department != "" && !model.FoldEqual(r.Department, opts.Department) {
					continue
				}
				if category != "" && r.Category != category {
					continue
				}
				rooms = append(rooms, r)
			}
			return a.out.Print(newStyles(a.out.Writer).renderRooms(rooms), rooms)
		},
	}

	cmd.Flags().StringVar(&opts.Department, "department", "", "filter by department")
	cmd.Flags().StringVar(&opts.Category, "category", "", "filter by category (lab|general)")

	return cmd
}

// roomView is the JSON form of a room including its grid.
type roomView struct {
	model.Room
	Schedule model.Schedule `json:"schedule"`
}

func newRoomsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <room>",
		Short: "Show a room's weekly grid",
		Example: `  slotmap rooms show 101
  slotmap rooms show 101 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := model.ParseRoomID(args[0])
			if err != nil {
				return a.fail(invalidInput("%v", err), nil)
			}
			room, ok := a.service.Room(id)
			if !ok {
				return a.fail(&booking.Error{Code: booking.CodeNotFound, Message: fmt.Sprintf("room %d not found", int(id))}, nil)
			}
			return a.out.Print(newStyles(a.out.Writer).renderRoom(room), roomView{Room: room, Schedule: room.Occupied})
		},
	}
}

func newRoomsAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <room> <department> <category>",
		Short: "Add a room (admin)",
		Long: `Add a new, fully free room. Requires an admin login.

Example:
  slotmap rooms add 410 MATH general -u admin -p admin123`,
		Args:          cobra.ExactArgs(3),
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

			id, err := model.ParseRoomID(args[0])
			if err != nil {
				return a.fail(invalidInput("%v", err), nil)
			}
			category, err := model.ParseCategory(args[2])
			if err != nil {
				return a.fail(invalidInput("%v", err), nil)
			}

			room, err := a.service.AddRoom(ctx, actor, model.Room{ID: id, Department: args[1], Category: category})
			if err != nil {
				return a.fail(err, nil)
			}
			return a.out.Print(fmt.Sprintf("Added room %d (%s, %s)\n", int(room.ID), room.Department, room.Category), room)
		},
	}
}

func newRoomsImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog.cue>",
		Short: "Add every new room from a CUE catalog (admin)",
		Long: `Add the rooms of a CUE room catalog. Rooms that already exist are
left untouched and reported. Requires an admin login.

Example:
  slotmap rooms import ./rooms.cue -u admin -p admin123`,
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
			actor, err := a.login(ctx, rootOpts)
			if err != nil {
				return err
			}

			rooms, err := provision.LoadCatalog(args[0])
			if err != nil {
				return a.fail(invalidInput("%v", err), nil)
			}

			res := RoomImportResult{Added: []model.RoomID{}, Existing: []model.RoomID{}}
			for _, r := range rooms {
				if _, err := a.service.AddRoom(ctx, actor, r); err != nil {
					if booking.IsAlreadyExists(err) {
						res.Existing = append(res.Existing, r.ID)
						continue
					}
					return a.fail(err, res)
				}
				res.Added = append(res.Added, r.ID)
			}

			text := fmt.Sprintf("Added %d room(s), %d already present\n", len(res.Added), len(res.Existing))
			if len(res.Existing) > 0 {
				ids := make([]string, len(res.Existing))
				for i, id := range res.Existing {
					ids[i] = fmt.Sprint(int(id))
				}
				text += "  existing: " + strings.Join(ids, ", ") + "\n"
			}
			return a.out.Print(text, res)
		},
	}
}
