package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/deppfellow/menu-api/internal/config"
	"github.com/deppfellow/menu-api/internal/database"
	"github.com/deppfellow/menu-api/internal/handler"
	"github.com/deppfellow/menu-api/internal/logger"
	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/repository"
	"github.com/deppfellow/menu-api/internal/router"
	"github.com/deppfellow/menu-api/internal/server"
	"github.com/deppfellow/menu-api/internal/service"
	"github.com/deppfellow/menu-api/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const DefaultContextTimeout = 30

var version = "dev"

func main() {
	c := &cobra.Command{
		Use:     "menu",
		Short:   "Restaurant menu API",
		Version: version,
		Args:    cobra.NoArgs,
		RunE:    serveCmd.RunE,
	}
	c.AddCommand(serveCmd, migrateCmd, seedCmd, routesCmd)

	if err := c.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is everything a command needs, built from the environment.
type app struct {
	cfg           *config.Config
	log           zerolog.Logger
	loggerService *logger.LoggerService
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	return &app{
		cfg:           cfg,
		log:           logger.NewLoggerWithService(cfg.Observability, loggerService),
		loggerService: loggerService,
	}, nil
}

// wire builds the dependency graph down to the HTTP router.
func (a *app) wire() (*server.Server, *repository.Repositories, *echo.Echo, error) {
	srv, err := server.New(a.cfg, &a.log, a.loggerService)
	if err != nil {
		return nil, nil, nil, err
	}

	repos, err := repository.NewRepositories(srv)
	if err != nil {
		return nil, nil, nil, err
	}

	services, err := service.NewService(srv, repos)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not create services: %w", err)
	}

	handlers := handler.NewHandlers(srv, services)
	return srv, repos, router.NewRouter(srv, handlers, services), nil
}

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.loggerService.Shutdown()

			if a.cfg.Primary.Env != "local" && a.cfg.Store.Driver == config.StoreDriverPostgres {
				if err := database.Migrate(context.Background(), &a.log, a.cfg); err != nil {
					a.log.Error().Err(err).Msg("failed to migrate database")
					return err
				}
			}

			srv, _, r, err := a.wire()
			if err != nil {
				a.log.Error().Err(err).Msg("failed to initialize server")
				return err
			}
			srv.SetupHTTPServer(r)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.log.Error().Err(err).Msg("failed to start server")
					stop()
				}
			}()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.Error().Err(err).Msg("server forced to shutdown")
				return err
			}

			a.log.Info().Msg("server exited properly")
			return nil
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return database.Migrate(cmd.Context(), &a.log, a.cfg)
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create a demo user and restaurant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			srv, err := server.New(a.cfg, &a.log, a.loggerService)
			if err != nil {
				return err
			}
			defer srv.Shutdown(context.Background())

			repos, err := repository.NewRepositories(srv)
			if err != nil {
				return err
			}
			return seed(cmd.Context(), repos.Store, &a.log)
		},
	}

	routesCmd = &cobra.Command{
		Use:   "routes",
		Short: "Print the registered routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			// Routes do not depend on the backing services.
			a.cfg.Store.Driver = config.StoreDriverMemory
			a.cfg.Redis.Address = ""
			a.log = zerolog.Nop()

			_, _, r, err := a.wire()
			if err != nil {
				return err
			}

			routes := r.Routes()
			sort.Slice(routes, func(i, j int) bool {
				if routes[i].Path == routes[j].Path {
					return routes[i].Method < routes[j].Method
				}
				return routes[i].Path < routes[j].Path
			})
			for _, route := range routes {
				fmt.Fprintf(cmd.OutOrStdout(), "%-7s %s\n", route.Method, route.Path)
			}
			return nil
		},
	}
)

func seed(ctx context.Context, store repository.Store, log *zerolog.Logger) error {
	return store.WithinTx(ctx, func(tx repository.Store) error {
		user, err := tx.CreateUser(ctx, "demo@menu.local", "Demo")
		if err != nil {
			return fmt.Errorf("seeding user: %w", sqlerr.HandleError(err))
		}

		restaurant, err := tx.CreateRestaurant(ctx, "Demo Bistro", model.Int64(user.ID))
		if err != nil {
			return fmt.Errorf("seeding restaurant: %w", sqlerr.HandleError(err))
		}

		log.Info().
			Int64("user_id", user.ID).
			Int64("restaurant_id", restaurant.ID).
			Msg("seeded demo data")
		return nil
	})
}
