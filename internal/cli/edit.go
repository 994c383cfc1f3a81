package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindgrid/pkg/board"
)

// editCommand creates the edit command.
func (c *CLI) editCommand() *cobra.Command {
	var (
		flags storeFlags
		title string
	)

	cmd := &cobra.Command{
		Use:   "edit [map-id]",
		Short: "Open a map in the terminal editor",
		Long: `Open a map in the full-screen terminal editor. Without a map id a
fresh map is created first.

Click a node to select it, drag it to move it. Hold alt and drag to
pan, scroll to zoom. Ctrl-click one node and then another to connect
them; ctrl-clicking the same node again cancels. Press ? inside the
editor for the key reference.`,
		Example: `  mindgrid edit               # start a new map
  mindgrid edit roadmap       # open an existing one
  mindgrid edit roadmap --remote https://maps.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx, cfg, flags)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			var mapID string
			if len(args) == 1 {
				mapID = args[0]
			} else {
				m := &board.Map{ID: board.NewID(), Title: title}
				if m.Title == "" {
					m.Title = "Untitled"
				}
				if err := st.CreateMap(ctx, m); err != nil {
					return err
				}
				mapID = m.ID
			}

			p := tea.NewProgram(
				newEditor(st, mapID, cfg, c.Logger),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(ctx),
			)
			final, err := p.Run()
			if err != nil {
				if errors.Is(err, tea.ErrProgramKilled) {
					return nil
				}
				return err
			}
			if ed, ok := final.(editor); ok && ed.s.loadErr != nil {
				return ed.s.loadErr
			}

			printSuccess("Saved %s", mapID)
			printNextStep("Export it", "mindgrid export "+mapID+" -f svg")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "title for a newly created map")
	return cmd
}
