package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mapwright/internal/server"
	"github.com/matzehuels/mapwright/pkg/cache"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string
	maxBody       int64
	origins       []string
	noCache       bool
	redisAddr     string
	redisPassword string
	redisDB       int
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: server.DefaultAddr, maxBody: server.DefaultMaxBodySize}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP export service",
		Long: `Serve exposes the exporters over HTTP:

  GET  /healthz
  POST /v1/export/{format}   JSON canvas in, exported text out
  POST /v1/render/{format}   JSON canvas in, Graphviz svg or png out
  POST /v1/import/csv        CSV tables in, JSON canvas out

Rendered artifacts are cached in Redis when --redis is set, otherwise in
the local cache directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "request body limit in bytes")
	cmd.Flags().StringSliceVar(&opts.origins, "cors-origin", nil, "allowed CORS origin (repeatable)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the render cache (host:port)")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	store, backend, err := serveCache(ctx, opts)
	if err != nil {
		return err
	}
	defer store.Close()

	printKeyValue("address", opts.addr)
	printKeyValue("cache", backend)
	if len(opts.origins) > 0 {
		printKeyValue("cors", fmt.Sprint(opts.origins))
	}

	s := server.New(server.Config{
		Addr:           opts.addr,
		MaxBodySize:    opts.maxBody,
		AllowedOrigins: opts.origins,
	},
		server.WithLogger(c.Logger),
		server.WithCache(store),
		server.WithEngineConfig(c.cfg),
	)
	return s.ListenAndServe(ctx)
}

// serveCache picks the render cache backend and names it for display.
func serveCache(ctx context.Context, opts serveOpts) (cache.Cache, string, error) {
	switch {
	case opts.noCache:
		return cache.NewNullCache(), "disabled", nil
	case opts.redisAddr != "":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     opts.redisAddr,
			Password: opts.redisPassword,
			DB:       opts.redisDB,
		})
		if err != nil {
			return nil, "", err
		}
		return rc, "redis " + opts.redisAddr, nil
	default:
		store, err := newCache(false)
		if err != nil {
			return nil, "", err
		}
		if fc, ok := store.(*cache.FileCache); ok {
			return store, "file " + fc.Dir(), nil
		}
		return store, "disabled", nil
	}
}
