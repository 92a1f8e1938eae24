package main

import (
	"context"
	"log"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/donamatch/donamatch/internal/adapters/nats"
	"github.com/donamatch/donamatch/internal/adapters/notify"
	"github.com/donamatch/donamatch/internal/adapters/postgres"
	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/pkg/config"
	"github.com/donamatch/donamatch/internal/pkg/logging"
	"github.com/donamatch/donamatch/internal/workflows"
)

func main() {
	cfg, err := config.Load("donamatch-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.AssignmentNotificationWorkflow)
	w.RegisterActivity(&workflows.AssignmentActivities{
		Donations: postgres.NewDonationRepo(db),
		NGOs:      postgres.NewNGORepo(db),
		Notifier:  notify.NewLogNotifier(cfg.Notification.From, logger),
	})

	if cfg.Notification.Enabled {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "notifier")
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer sub.Close()

		dispatcher := workflows.NewDispatcher(c, cfg.Temporal.TaskQueue)
		if err := sub.SubscribeDonationEvents(ctx, domain.EventDonationAssigned, dispatcher.HandleAssigned); err != nil {
			log.Fatalf("subscribe %s: %v", domain.EventDonationAssigned, err)
		}
		logger.Info("dispatching assignment notices", "event", domain.EventDonationAssigned)
	} else {
		logger.Warn("notification.enabled is false; assignment events are not dispatched")
	}

	logger.Info("notifier worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
