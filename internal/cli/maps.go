package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/store"
)

// mapsCommand creates the maps command with subcommands.
func (c *CLI) mapsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maps",
		Short: "List and manage maps",
	}

	cmd.AddCommand(c.mapsListCommand())
	cmd.AddCommand(c.mapsCreateCommand())
	cmd.AddCommand(c.mapsRenameCommand())
	cmd.AddCommand(c.mapsDeleteCommand())

	return cmd
}

// withStore resolves the backend, runs fn, and closes the store afterwards.
func (c *CLI) withStore(ctx context.Context, flags storeFlags, fn func(st store.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := c.openStore(ctx, cfg, flags)
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	return fn(st)
}

// mapsListCommand creates the "maps list" subcommand.
func (c *CLI) mapsListCommand() *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), flags, func(st store.Store) error {
				maps, err := st.ListMaps(cmd.Context())
				if err != nil {
					return err
				}
				if len(maps) == 0 {
					printInfo("No maps yet")
					printNextStep("Create one", "mindgrid maps create \"My first map\"")
					return nil
				}
				printMapTable(maps)
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

// printMapTable renders the map list as a bordered table.
func printMapTable(maps []board.Map) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(maps))
	for i, m := range maps {
		rows[i] = []string{m.ID, m.Title, formatRelativeTime(m.UpdatedAt)}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	fmt.Println(t.Render())
}

// formatRelativeTime renders a timestamp as a short age like "3h ago".
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// mapsCreateCommand creates the "maps create" subcommand.
func (c *CLI) mapsCreateCommand() *cobra.Command {
	var (
		flags storeFlags
		id    string
	)

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), flags, func(st store.Store) error {
				m := &board.Map{ID: id, Title: args[0]}
				if m.ID == "" {
					m.ID = board.NewID()
				}
				if err := st.CreateMap(cmd.Context(), m); err != nil {
					return err
				}

				printSuccess("Created %q", m.Title)
				printKeyValue("ID", m.ID)
				printNewline()
				printNextStep("Edit it", "mindgrid edit "+m.ID)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&id, "id", "", "map id (default: generated)")
	return cmd
}

// mapsRenameCommand creates the "maps rename" subcommand.
func (c *CLI) mapsRenameCommand() *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "rename [map-id] [title]",
		Short: "Rename a map",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), flags, func(st store.Store) error {
				if err := st.RenameMap(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				printSuccess("Renamed %s to %q", args[0], args[1])
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

// mapsDeleteCommand creates the "maps delete" subcommand.
func (c *CLI) mapsDeleteCommand() *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "delete [map-id]",
		Short: "Delete a map and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), flags, func(st store.Store) error {
				if err := st.DeleteMap(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}
