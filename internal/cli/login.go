package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindgrid/pkg/session"
	"github.com/matzehuels/mindgrid/pkg/store"
)

// loginCommand creates the login command.
func (c *CLI) loginCommand() *cobra.Command {
	var (
		serverURL string
		token     string
		user      string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store credentials for a map server",
		Long: `Verify a bearer token against a map server and store it locally.

Sessions are kept in ~/.config/mindgrid/sessions/, one per server, and
expire after 30 days. Commands run with --remote pick up the stored
token automatically.`,
		Example: `  mindgrid login --server https://maps.example.com --token s3cret
  mindgrid login --token s3cret --user alex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			server, err := c.resolveServer(serverURL)
			if err != nil {
				return err
			}

			sessions, err := session.NewCLIStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if existing, err := sessions.GetSession(ctx, server); err == nil && existing != nil {
				printInfo("Already logged in to %s", server)
				printDetail("Run 'mindgrid logout --server %s' first to switch tokens", server)
				return nil
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			printInline("Verifying token against %s...", server)

			client := store.NewClient(server, token, nil, nil)
			defer client.Close(ctx)
			if _, err := client.ListMaps(ctx); err != nil {
				fmt.Println()
				return fmt.Errorf("verify token: %w", err)
			}
			fmt.Println()

			sess, err := session.New(server, token, user, session.DefaultTTL)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}
			if err := sessions.SaveSession(ctx, sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			printSuccess("Logged in to %s", server)
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			printDetail("Session stored at %s", sessions.Path(server))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "server URL (default from config)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token for the server")
	cmd.Flags().StringVar(&user, "user", "", "display name stored with the session")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

// logoutCommand creates the logout command.
func (c *CLI) logoutCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials for a map server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := c.resolveServer(serverURL)
			if err != nil {
				return err
			}
			sessions, err := session.NewCLIStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if err := sessions.DeleteSession(cmd.Context(), server); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out of %s", server)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "server URL (default from config)")
	return cmd
}

// whoamiCommand creates the whoami command.
func (c *CLI) whoamiCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session for a map server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			server, err := c.resolveServer(serverURL)
			if err != nil {
				return err
			}
			sessions, err := session.NewCLIStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			sess, err := sessions.GetSession(ctx, server)
			if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
				return fmt.Errorf("not logged in to %s (run 'mindgrid login' first)", server)
			}
			if err != nil {
				return fmt.Errorf("get session: %w", err)
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			sp := newSpinner(ctx, "Verifying session...")
			sp.Start()

			client := store.NewClient(server, sess.Token, nil, nil)
			defer client.Close(ctx)
			if _, err := client.ListMaps(ctx); err != nil {
				sp.Fail("Session invalid")
				return fmt.Errorf("verify session: %w", err)
			}
			sp.Stop()

			printSuccess("Mindgrid Session")
			printKeyValue("Server", sess.Server)
			if sess.User != "" {
				printKeyValue("User", sess.User)
			}
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			if !sess.ExpiresAt.IsZero() {
				printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "server URL (default from config)")
	return cmd
}

// resolveServer picks the server URL from the flag or the config default.
func (c *CLI) resolveServer(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Server.Remote == "" {
		return "", fmt.Errorf("no server given (set --server or server.remote in the config)")
	}
	return cfg.Server.Remote, nil
}
