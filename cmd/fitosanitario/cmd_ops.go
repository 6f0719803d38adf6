package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitosanitario/common/database"
	commonredis "fitosanitario/common/redis"
	httpapi "fitosanitario/internal/http"
	"fitosanitario/schema"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (/api/v1 records, /healthz, /metrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.wire()
			if err != nil {
				return err
			}

			checks := make(map[string]httpapi.Pinger)
			for _, role := range a.provider.Roles() {
				h, err := a.provider.Acquire(string(role))
				if err != nil {
					return err
				}
				checks["db:"+string(role)] = h
			}
			if a.redis != nil {
				client := a.redis
				checks["redis"] = httpapi.PingFunc(func(ctx context.Context) error {
					return commonredis.Ping(ctx, client)
				})
			}

			router := httpapi.NewRouter(a.logger)
			router.RegisterOpsRoutes(httpapi.NewOpsHandler(checks, a.registry, a.logger))
			router.RegisterRecordRoutes(httpapi.NewRecordsHandler(a.services, a.logger))
			srv := httpapi.NewServer(a.cfg.HTTP.Addr, router, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("ops server failed: %w", err)
				}
				return nil
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the fitosanitario tables for the configured driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.wire()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), &a.cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close(db)

			n, err := schema.Apply(cmd.Context(), db, a.cfg.Database.Driver)
			if err != nil {
				a.logger.Error("Migration failed", zap.Int("applied", n), zap.Error(err))
				return err
			}
			a.logger.Info("Migration completed", zap.String("driver", a.cfg.Database.Driver), zap.Int("statements", n))
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d statements\n", n)
			return nil
		},
	}
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Acquire the --role handle and ping the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.wire()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if err := a.handle.Ping(ctx); err != nil {
				return fmt.Errorf("role %s: %w", a.handle.Role(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "role %s: ok\n", a.handle.Role())
			return nil
		},
	}
}
