package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindgrid/internal/server"
	"github.com/matzehuels/mindgrid/pkg/cache"
	"github.com/matzehuels/mindgrid/pkg/store"
)

// serveFlags collects the flags for the serve command.
type serveFlags struct {
	addr    string
	mongo   string
	mongoDB string
	redis   string
	data    string
	token   string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the map server",
		Long: `Run the HTTP map server.

Maps live in MongoDB when --mongo is set, on disk when --data is set,
and in memory otherwise. A Redis address adds a read-through board
cache in front of the backend. When --token is set, every /api request
must carry it as a bearer token.`,
		Example: `  mindgrid serve --data ~/maps
  mindgrid serve --mongo mongodb://localhost:27017 --redis localhost:6379
  mindgrid serve --addr :9000 --token s3cret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default from config, falls back to :8391)")
	cmd.Flags().StringVar(&flags.mongo, "mongo", "", "MongoDB connection URI")
	cmd.Flags().StringVar(&flags.mongoDB, "mongo-db", "", "MongoDB database name")
	cmd.Flags().StringVar(&flags.redis, "redis", "", "Redis address for the board cache")
	cmd.Flags().StringVar(&flags.data, "data", "", "serve maps from this directory instead of MongoDB")
	cmd.Flags().StringVar(&flags.token, "token", "", "require this bearer token on /api requests")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if flags.addr == "" {
		flags.addr = cfg.Server.Addr
	}
	if flags.mongo == "" {
		flags.mongo = cfg.Server.MongoURI
	}
	if flags.mongoDB == "" {
		flags.mongoDB = cfg.Server.MongoDB
	}
	if flags.redis == "" {
		flags.redis = cfg.Server.RedisAddr
	}

	st, err := c.openServeStore(ctx, flags)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	srv := server.New(st, logger, server.WithToken(flags.token))
	httpSrv := &http.Server{
		Addr:              flags.addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	prog := newProgress(logger)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", flags.addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		prog.done("Server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// openServeStore picks the backend for the server process.
func (c *CLI) openServeStore(ctx context.Context, flags serveFlags) (store.Store, error) {
	logger := loggerFromContext(ctx)

	var (
		st  store.Store
		err error
	)
	switch {
	case flags.data != "":
		st, err = store.NewFileStore(flags.data)
		logger.Debug("using file store", "dir", flags.data)
	case flags.mongo != "":
		st, err = store.NewMongoStore(ctx, flags.mongo, flags.mongoDB)
		logger.Debug("using mongo store", "db", flags.mongoDB)
	default:
		st = store.NewMemoryStore()
		printWarning("No backend configured, maps are lost on exit (set --mongo or --data)")
	}
	if err != nil {
		return nil, err
	}

	if flags.redis != "" {
		rc, err := cache.NewRedisCache(ctx, flags.redis)
		if err != nil {
			st.Close(ctx)
			return nil, err
		}
		keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "server")
		st = store.NewCachedStore(st, rc, keyer)
		logger.Debug("board cache enabled", "redis", flags.redis)
	}
	return st, nil
}
