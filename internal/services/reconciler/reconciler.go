// Package reconciler реализует воркера, сводящего локальный каталог с внешним
// бэкендом идентичности. Задания провижининга читаются из очереди outbox;
// при ошибке бэкенда сообщение возвращается в очередь и будет повторено,
// пока оба хранилища не сойдутся.
package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/skillsfinder/skillsfinder/internal/identity"
	"github.com/skillsfinder/skillsfinder/internal/lib/resettoken"
	"github.com/skillsfinder/skillsfinder/internal/lib/sl"
	"github.com/skillsfinder/skillsfinder/internal/outbox"
)

// IdentityClient — часть клиента бэкенда, нужная воркеру.
type IdentityClient interface {
	CreateUser(ctx context.Context, email, password, name string) (*identity.Profile, error)
}

// Service обрабатывает задания провижининга учётных записей.
type Service struct {
	idClient IdentityClient
	log      *slog.Logger
}

// New создаёт новый экземпляр Service.
func New(idClient IdentityClient, log *slog.Logger) *Service {
	return &Service{idClient: idClient, log: log}
}

// HandleProvisionJob создаёт учётную запись во внешнем бэкенде по заданию
// из очереди. Пароль внешней записи назначается случайным: свой пароль
// пользователь устанавливает через процедуру сброса. Ненулевая ошибка
// возвращает сообщение в очередь.
func (s *Service) HandleProvisionJob(body []byte) error {
	const op = "reconciler.HandleProvisionJob"
	log := s.log.With(sl.Op(op))

	var job outbox.ProvisionJob
	if err := json.Unmarshal(body, &job); err != nil {
		log.Error("failed to unmarshal provision job", sl.Err(err))
		// Неразборчивое сообщение повторять бессмысленно.
		return nil
	}

	initialPassword, err := resettoken.Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	profile, err := s.idClient.CreateUser(context.Background(), job.Email, initialPassword, job.Name)
	if err != nil {
		log.Error("identity provisioning failed, job will be retried",
			slog.String("member_id", job.MemberID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("identity account provisioned",
		slog.String("member_id", job.MemberID),
		slog.String("identity_id", profile.ID))
	return nil
}
