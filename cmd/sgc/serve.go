package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/sgc-hq/sgc/modules/competency/infrastructure/persistence"
	"github.com/sgc-hq/sgc/modules/competency/presentation/controllers"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
	"github.com/sgc-hq/sgc/modules/competency/services/workflow"
	"github.com/sgc-hq/sgc/pkg/configuration"
	"github.com/sgc-hq/sgc/pkg/middleware"
	"github.com/sgc-hq/sgc/pkg/outbox"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			logger := conf.Logger()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			pool, err := pgxpool.New(ctx, conf.Database.Opts)
			if err != nil {
				return err
			}
			defer pool.Close()

			reads := persistence.NewEngineReads(pool)
			units := persistence.NewUnitDirectory(pool, 30*time.Second)
			engine := access.NewEngine(reads, reads, units, logger)

			svc := workflow.NewService(workflow.Options{
				Store:        persistence.NewPgStore(pool),
				Processes:    persistence.NewProcessRepository(),
				Subprocesses: persistence.NewSubprocessRepository(),
				Movements:    persistence.NewMovementRepository(),
				Units:        units,
				Engine:       engine,
				Publisher:    outbox.NewPublisher(),
				Log:          logger,
			})

			r := mux.NewRouter()
			r.Use(middleware.WithLogger(logger))
			r.Use(middleware.Authenticate())
			viewGuard := middleware.RequireAction(engine, access.ActionViewSubprocess)
			controllers.NewSubprocessController(svc).Register(r, viewGuard)
			controllers.NewProcessController(svc).Register(r)
			controllers.NewAlertController(persistence.NewNotificationRepository(pool)).Register(r)

			srv := &http.Server{
				Addr:              conf.SocketAddress,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}
			logger.WithField("addr", conf.SocketAddress).Info("http server listening")
			return srv.ListenAndServe()
		},
	}
}
