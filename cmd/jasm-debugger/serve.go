package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/frantoso/jasm-debugger/eventstore"
	"github.com/frantoso/jasm-debugger/internal/logging"
	"github.com/frantoso/jasm-debugger/server"
	"github.com/frantoso/jasm-debugger/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept debugged processes and serve their diagrams",
	Long: `Starts the TCP listener for debugged processes and the HTTP API that
serves session lists, rendered SVG diagrams and an update event stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tcpAddr, _ := cmd.Flags().GetString("tcp-addr")
		httpAddr, _ := cmd.Flags().GetString("http-addr")
		dbPath, _ := cmd.Flags().GetString("db")
		levelFlag, _ := cmd.Flags().GetString("log-level")

		log := logging.New(logging.ParseLevel(levelFlag))

		var store eventstore.Store
		if dbPath != "" {
			sqlStore, err := eventstore.NewSQLiteStore(dbPath)
			if err != nil {
				return fmt.Errorf("opening command store: %w", err)
			}
			store = sqlStore
		} else {
			store = eventstore.NewMemoryStore()
		}
		defer store.Close()

		srv := server.New(session.NewManager(log),
			server.WithStore(store),
			server.WithLogger(log),
			server.WithMetrics(prometheus.DefaultRegisterer),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		httpServer := &http.Server{
			Addr:    httpAddr,
			Handler: srv.Handler(),
		}

		errs := make(chan error, 2)
		go func() {
			errs <- srv.ListenTCP(ctx, tcpAddr)
		}()
		go func() {
			log.Info("serving http api", "addr", httpAddr)
			if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
				errs <- err
			}
		}()

		select {
		case err := <-errs:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			httpServer.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("tcp-addr", ":9091", "Address for debugged processes")
	serveCmd.Flags().String("http-addr", ":8080", "Address for the HTTP API")
	serveCmd.Flags().String("db", "", "SQLite file for recording commands (empty keeps them in memory)")
}
