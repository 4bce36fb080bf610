// Package reconciler собирает зависимости воркера провижининга учётных
// записей во внешнем бэкенде идентичности.
package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/skillsfinder/skillsfinder/internal/config"
	"github.com/skillsfinder/skillsfinder/internal/identity"
	"github.com/skillsfinder/skillsfinder/internal/lib/rabbitmq"
	reconcilerservice "github.com/skillsfinder/skillsfinder/internal/services/reconciler"
)

type App struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	reconciler *reconcilerservice.Service
	queue      string
	logger     *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitURL, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.ProvisionQueues(cfg.ProvisionQueue)
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	idClient := identity.NewClient(cfg.IdentityAddress, cfg.IdentityAPIKey)
	reconciler := reconcilerservice.New(idClient, logger)

	return &App{
		conn:       conn,
		ch:         ch,
		reconciler: reconciler,
		queue:      cfg.ProvisionQueue,
		logger:     logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, a.queue, a.reconciler.HandleProvisionJob)
	if err != nil {
		a.logger.Error("failed to start provision consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("identity reconciler shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
