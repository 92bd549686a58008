package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

// ReminderLead за сколько до начала записи отправляется напоминание
const ReminderLead = 2 * time.Hour

// Enqueuer интерфейс постановки задач (*asynq.Client)
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }

// Publisher публикует события бронирований в очередь asynq
type Publisher struct {
	client       Enqueuer
	queue        string
	maxRetry     int
	timeProvider TimeProvider
}

// NewPublisher создает публикатор событий
func NewPublisher(client Enqueuer, queue string, maxRetry int) *Publisher {
	return &Publisher{
		client:       client,
		queue:        queue,
		maxRetry:     maxRetry,
		timeProvider: realTimeProvider{},
	}
}

// BookingCreated публикует событие о новой записи и планирует напоминание
func (p *Publisher) BookingCreated(ctx context.Context, booking *domain.Booking, loc *time.Location) error {
	if err := p.publish(ctx, TypeBookingCreated, booking, nil); err != nil {
		return err
	}
	if booking.Status == domain.StatusConfirmed {
		return p.scheduleReminder(ctx, booking, loc)
	}
	return nil
}

// BookingConfirmed публикует событие о подтверждении записи и планирует напоминание
func (p *Publisher) BookingConfirmed(ctx context.Context, booking *domain.Booking, loc *time.Location) error {
	if err := p.publish(ctx, TypeBookingConfirmed, booking, nil); err != nil {
		return err
	}
	return p.scheduleReminder(ctx, booking, loc)
}

// BookingCancelled публикует событие об отмене записи
func (p *Publisher) BookingCancelled(ctx context.Context, booking *domain.Booking, reason string) error {
	return p.publish(ctx, TypeBookingCancelled, booking, &reason)
}

func (p *Publisher) scheduleReminder(ctx context.Context, booking *domain.Booking, loc *time.Location) error {
	if p == nil {
		return nil
	}
	fireAt := domain.SlotStart(booking.BookingDate, booking.StartTime.Minutes(), loc).Add(-ReminderLead)
	if !fireAt.After(p.timeProvider.Now()) {
		return nil
	}
	return p.publish(ctx, TypeBookingReminder, booking, nil, asynq.ProcessAt(fireAt))
}

func (p *Publisher) publish(ctx context.Context, taskType string, booking *domain.Booking, reason *string, extra ...asynq.Option) error {
	// Уведомления выключены
	if p == nil {
		return nil
	}

	event := BookingEvent{
		EventID:         uuid.NewString(),
		BookingID:       booking.ID,
		ProviderID:      booking.ProviderID,
		ServiceID:       booking.ServiceID,
		ClientID:        booking.ClientID,
		Date:            booking.BookingDate.Format(domain.DateFormat),
		StartTime:       booking.StartTime.String(),
		DurationMinutes: booking.DurationMinutes,
		Status:          string(booking.Status),
		Reason:          reason,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodePayload, err)
	}

	opts := append([]asynq.Option{
		asynq.Queue(p.queue),
		asynq.MaxRetry(p.maxRetry),
		// Один тип события на бронирование: повторная публикация не создает дубликат
		asynq.TaskID(fmt.Sprintf("%s:%d", taskType, booking.ID)),
	}, extra...)

	_, err = p.client.EnqueueContext(ctx, asynq.NewTask(taskType, payload), opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s booking=%d: %v", ErrEnqueue, taskType, booking.ID, err)
	}
	return nil
}
