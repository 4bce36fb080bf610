// Package outbox реализует очередь заданий синхронизации локального каталога
// с внешним бэкендом идентичности. Регистрация пишет участника локально и
// кладёт задание провижининга в долговременную очередь; отдельный воркер
// повторяет вызов бэкенда до сходимости, закрывая разрыв двойной записи.
package outbox

import (
	"github.com/streadway/amqp"

	"github.com/skillsfinder/skillsfinder/internal/lib/rabbitmq"
)

// ProvisionJob — задание на создание учётной записи во внешнем бэкенде.
// Пароль в задание не включается: бэкенду назначается случайный пароль,
// пользователь устанавливает свой через сброс.
type ProvisionJob struct {
	MemberID string `json:"member_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Publisher кладёт задания провижининга в очередь.
type Publisher interface {
	EnqueueProvision(job ProvisionJob) error
}

// RabbitPublisher публикует задания в RabbitMQ.
type RabbitPublisher struct {
	ch *amqp.Channel
}

// NewRabbitPublisher создаёт издателя поверх открытого канала.
func NewRabbitPublisher(ch *amqp.Channel) *RabbitPublisher {
	return &RabbitPublisher{ch: ch}
}

// EnqueueProvision публикует задание провижининга с persistent-доставкой.
func (p *RabbitPublisher) EnqueueProvision(job ProvisionJob) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.Exchange, "provision", job)
}
