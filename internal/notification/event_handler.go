package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/employee"
)

type EmployeeSource interface {
	GetAll(ctx context.Context, ownerID string) ([]*employee.Employee, error)
}

type Enqueuer interface {
	Enqueue(m Message) error
}

// EventHandler tells staff when a schedule they work in is published or
// withdrawn.
type EventHandler struct {
	employees EmployeeSource
	queue     Enqueuer
	logger    *slog.Logger
}

func NewEventHandler(employees EmployeeSource, queue Enqueuer, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		employees: employees,
		queue:     queue,
		logger:    logger,
	}
}

func (h *EventHandler) HandleSchedulePublished(ctx context.Context, event events.Event) error {
	return h.notify(ctx, event, TemplateSchedulePublished)
}

func (h *EventHandler) HandleScheduleUnpublished(ctx context.Context, event events.Event) error {
	return h.notify(ctx, event, TemplateScheduleUnpublished)
}

func (h *EventHandler) notify(ctx context.Context, event events.Event, template string) error {
	scheduleEvent, ok := event.(*events.ScheduleEvent)
	if !ok {
		h.logger.Error("invalid event type for schedule notification handler", "event_type", event.EventType())
		return fmt.Errorf("expected ScheduleEvent, got %T", event)
	}

	roster, err := h.employees.GetAll(ctx, scheduleEvent.OwnerID)
	if err != nil {
		return fmt.Errorf("loading employees for schedule %s: %w", scheduleEvent.ScheduleID, err)
	}
	byID := make(map[string]*employee.Employee, len(roster))
	for _, e := range roster {
		byID[e.ID] = e
	}

	queued, skipped := 0, 0
	for _, id := range scheduleEvent.EmployeeIDs {
		e, found := byID[id]
		if !found {
			skipped++
			continue
		}

		data := map[string]interface{}{
			"firstName":    e.FirstName,
			"scheduleName": scheduleEvent.Name,
			"startDate":    scheduleEvent.StartDate,
			"endDate":      scheduleEvent.EndDate,
		}

		if e.CanReceiveEmail() {
			queued += h.enqueue(Message{Channel: ChannelEmail, Template: template, Recipient: e.Email, Data: data})
		}
		if e.CanReceiveSMS() {
			queued += h.enqueue(Message{Channel: ChannelSMS, Template: template, Recipient: e.Phone, Data: data})
		}
	}

	h.logger.Info("schedule notifications queued",
		"schedule_id", scheduleEvent.ScheduleID,
		"template", template,
		"queued", queued,
		"unknown_employees", skipped,
		"event_id", scheduleEvent.EventID())
	return nil
}

func (h *EventHandler) enqueue(m Message) int {
	if err := h.queue.Enqueue(m); err != nil {
		h.logger.Warn("notification not queued", "template", m.Template, "channel", m.Channel, "error", err)
		return 0
	}
	return 1
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeSchedulePublished, h.HandleSchedulePublished)
	eventBus.Subscribe(events.EventTypeScheduleUnpublished, h.HandleScheduleUnpublished)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeSchedulePublished, events.EventTypeScheduleUnpublished})
}
