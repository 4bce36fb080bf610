// Package skillsfinder собирает зависимости основного приложения: хранилище
// каталога, кэш, внешний бэкенд идентичности, почтовый транспорт, очередь
// провижининга и HTTP-сервер.
package skillsfinder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/skillsfinder/skillsfinder/internal/cache"
	"github.com/skillsfinder/skillsfinder/internal/config"
	"github.com/skillsfinder/skillsfinder/internal/identity"
	"github.com/skillsfinder/skillsfinder/internal/lib/jwt"
	"github.com/skillsfinder/skillsfinder/internal/lib/rabbitmq"
	"github.com/skillsfinder/skillsfinder/internal/lib/smtp"
	"github.com/skillsfinder/skillsfinder/internal/outbox"
	directoryservice "github.com/skillsfinder/skillsfinder/internal/services/directory"
	senderservice "github.com/skillsfinder/skillsfinder/internal/services/sender"
	sessionservice "github.com/skillsfinder/skillsfinder/internal/services/session"
	"github.com/skillsfinder/skillsfinder/internal/storage/memory"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	cache  *cache.Cache
	rabbit *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	store := memory.New()
	idClient := identity.NewClient(cfg.IdentityAddress, cfg.IdentityAPIKey)

	var rabbitConn *amqp.Connection
	var provision outbox.Publisher
	if cfg.RabbitURL != "" {
		rabbitConn, err = rabbitmq.Connect(cfg.RabbitURL, 5, 3*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.ProvisionQueues(cfg.ProvisionQueue))
		if err != nil {
			return nil, err
		}
		provision = outbox.NewRabbitPublisher(ch)
	}

	var mailer sessionservice.ResetMailer
	transport := smtp.NewTransport(cfg, logger)
	if transport.Configured() {
		mailer = senderservice.NewSenderService(logger, transport)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	dirService := directoryservice.NewDirectoryService(store, cacheRedis, logger)
	sessService := sessionservice.NewSessionService(
		store,
		idClient,
		cacheRedis,
		mailer,
		provision,
		dirService,
		jwtMaker,
		sessionservice.AdminCredentials{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
		},
		cfg.AppURL,
		cfg.ResetTokenTTL,
		logger,
	)
	if err := sessService.EnsureAdmin(); err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	RegisterRoutes(router, logger, sessService, dirService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		cache:  cacheRedis,
		rabbit: rabbitConn,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.rabbit != nil {
			_ = a.rabbit.Close()
		}
		_ = a.cache.Db.Close()
		return err
	}
}
