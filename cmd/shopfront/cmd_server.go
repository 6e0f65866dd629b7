package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/shopfront/app/listeners"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/internal/kernel"
	"github.com/shashiranjanraj/shopfront/internal/server"
	"github.com/shashiranjanraj/shopfront/pkg/cache"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

// shopfront serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := config.Load(); err != nil {
			return err
		}
		closeLogs := logger.Setup()
		defer closeLogs()

		store, release, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer release()

		if err := cache.Connect(ctx); err != nil {
			logger.Warn("cache disabled", "error", err)
		}
		defer cache.Close()

		storage.Connect(ctx)
		listeners.Register()

		k := kernel.New(store, storage.Default())
		defer k.Close()

		logger.Info("shopfront starting", "env", config.AppEnv(), "store", config.StoreDriver(), "api", config.APIURL())
		return server.Start(ctx, ":"+config.AppPort(), k.Handler())
	},
}

// shopfront route:list: print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		k := kernel.New(repositories.NewMemoryStore(), storage.NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()))
		defer k.Close()
		return printRoutes(k)
	},
}

func printRoutes(k *kernel.HTTP) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range k.Routes() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
