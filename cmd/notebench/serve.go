package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebench"
	"github.com/aretw0/notebench/pkg/api"
)

var (
	servePort      int
	serveFlavor    string
	serveStore     string
	serveDataDir   string
	serveFormat    string
	serveSystemDir string
	serveWatch     bool
	serveDBURI     string
	serveDBName    string
	serveStaticDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the notes and benchmark API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		override(cmd, "port", &cfg.Port, servePort)
		override(cmd, "flavor", &cfg.Flavor, serveFlavor)
		override(cmd, "store", &cfg.Store, serveStore)
		override(cmd, "data-dir", &cfg.DataDir, serveDataDir)
		override(cmd, "format", &cfg.StoreFormat, serveFormat)
		override(cmd, "system-dir", &cfg.SystemDir, serveSystemDir)
		override(cmd, "watch", &cfg.Watch, serveWatch)
		override(cmd, "db-uri", &cfg.DBURI, serveDBURI)
		override(cmd, "db-name", &cfg.DBName, serveDBName)
		override(cmd, "static", &cfg.StaticDir, serveStaticDir)
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := slog.Default()

		uri := cfg.DataDir
		if cfg.Store == "mongo" {
			uri = cfg.DBURI
		}
		svc, err := notebench.New(ctx, uri,
			notebench.WithAdapter(cfg.Store),
			notebench.WithLogger(logger),
			notebench.WithFormat(cfg.StoreFormat),
			notebench.WithSystemDir(cfg.SystemDir),
			notebench.WithWatch(cfg.Watch),
			notebench.WithDatabase(cfg.DBName),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize %s store: %w", cfg.Store, err)
		}

		// The executor outlives the signal so requests still queued on the
		// event loop are answered while the server drains.
		b, exec, err := notebench.NewBackend(context.WithoutCancel(ctx), cfg.Flavor, svc, logger)
		if err != nil {
			return err
		}

		srv := api.NewServer(b, api.Config{StaticDir: cfg.StaticDir, Logger: logger})
		serveErr := srv.ListenAndServe(ctx, cfg.Addr())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := exec.Stop(shutdownCtx); err != nil {
			logger.Warn("failed to stop executor", "error", err)
		}
		if err := notebench.Close(shutdownCtx, svc.Repository()); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
		return serveErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 9000, "Port to listen on (env PORT)")
	serveCmd.Flags().StringVar(&serveFlavor, "flavor", "go", `Execution model: "go" or "eventloop" (env FLAVOR)`)
	serveCmd.Flags().StringVar(&serveStore, "store", "memory", `Note store: "memory", "fs" or "mongo" (env STORE)`)
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Directory of the fs store (env DATA_DIR)")
	serveCmd.Flags().StringVar(&serveFormat, "format", ".json", `File format of the fs store: ".json", ".yaml" or ".cbor" (env STORE_FORMAT)`)
	serveCmd.Flags().StringVar(&serveSystemDir, "system-dir", ".notebench", "Directory inside data-dir holding the fs index cache (env SYSTEM_DIR)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Evict the fs index cache on external edits (env WATCH)")
	serveCmd.Flags().StringVar(&serveDBURI, "db-uri", "", "MongoDB connection string (env DB_URI)")
	serveCmd.Flags().StringVar(&serveDBName, "db-name", "notes", "MongoDB database (env DB_NAME)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static", "", "Directory served at / (env STATIC_DIR)")
}
