package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sgc-hq/sgc/modules/competency/handlers"
	"github.com/sgc-hq/sgc/modules/competency/infrastructure/persistence"
	"github.com/sgc-hq/sgc/pkg/configuration"
	"github.com/sgc-hq/sgc/pkg/eventbus"
	"github.com/sgc-hq/sgc/pkg/outbox"
	eventbusdispatcher "github.com/sgc-hq/sgc/pkg/outbox/dispatchers/eventbus"
)

func relayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Run the outbox relay and cleaner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			logger := conf.Logger()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			pool, err := pgxpool.New(ctx, conf.Database.Opts)
			cancel()
			if err != nil {
				return err
			}
			defer pool.Close()

			table := pgx.Identifier{"competency_outbox"}
			units := persistence.NewUnitDirectory(pool, 30*time.Second)
			notifications := persistence.NewNotificationRepository(pool)
			notifier := handlers.NewNotificationHandler(notifications, notifications, units, logger)

			bus := eventbus.NewEventPublisherWithError(logger)
			bus.Subscribe(func(meta *outbox.Meta, topic string, payload json.RawMessage) error {
				return notifier.Dispatch(cmd.Context(), outbox.DispatchedMessage{Meta: *meta, Payload: payload})
			})
			dispatcher := eventbusdispatcher.New(bus)

			relay, err := outbox.NewRelay(pool, table, dispatcher, outbox.RelayOptions{
				PollInterval:    conf.Outbox.RelayPollInterval,
				BatchSize:       conf.Outbox.RelayBatchSize,
				LockTTL:         conf.Outbox.RelayLockTTL,
				MaxAttempts:     conf.Outbox.RelayMaxAttempts,
				SingleActive:    conf.Outbox.RelaySingleActive,
				DispatchTimeout: conf.Outbox.RelayDispatchTimeout,
				LastErrorMaxLen: conf.Outbox.LastErrorMaxBytes,
				Logger:          logrus.NewEntry(logger),
			})
			if err != nil {
				return err
			}

			cleaner, err := outbox.NewCleaner(pool, table, outbox.CleanerOptions{
				Enabled:   conf.Outbox.CleanerEnabled,
				Interval:  conf.Outbox.CleanerInterval,
				Retention: conf.Outbox.CleanerRetention,
				Logger:    logrus.NewEntry(logger),
			})
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(cmd.Context())
			if conf.Outbox.RelayEnabled {
				g.Go(func() error { return relay.Run(gctx) })
			} else {
				logger.Warn("outbox relay disabled by configuration")
			}
			g.Go(func() error { return cleaner.Run(gctx) })

			if conf.Prometheus.Enabled {
				metricsMux := http.NewServeMux()
				metricsMux.Handle(conf.Prometheus.Path, promhttp.Handler())
				srv := &http.Server{
					Addr:              conf.SocketAddress,
					Handler:           metricsMux,
					ReadHeaderTimeout: 10 * time.Second,
				}
				g.Go(func() error { return srv.ListenAndServe() })
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				})
			}

			logger.Info("outbox relay running")
			return g.Wait()
		},
	}
}
