package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSchedulePublished   = "schedule.published"
	EventTypeScheduleUnpublished = "schedule.unpublished"
	EventTypeScheduleGenerated   = "schedule.generated"
)

// ScheduleEvent announces a status change of a schedule. EmployeeIDs lists
// everyone holding at least one shift in it, without duplicates.
type ScheduleEvent struct {
	BaseEvent
	ScheduleID  string   `json:"schedule_id"`
	OwnerID     string   `json:"owner_id"`
	Name        string   `json:"name"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	EmployeeIDs []string `json:"employee_ids"`
}

func newScheduleEvent(eventType, scheduleID, ownerID, name, startDate, endDate string, employeeIDs []string) *ScheduleEvent {
	return &ScheduleEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"schedule_id":  scheduleID,
				"owner_id":     ownerID,
				"name":         name,
				"start_date":   startDate,
				"end_date":     endDate,
				"employee_ids": employeeIDs,
			},
		},
		ScheduleID:  scheduleID,
		OwnerID:     ownerID,
		Name:        name,
		StartDate:   startDate,
		EndDate:     endDate,
		EmployeeIDs: employeeIDs,
	}
}

func NewSchedulePublishedEvent(scheduleID, ownerID, name, startDate, endDate string, employeeIDs []string) *ScheduleEvent {
	return newScheduleEvent(EventTypeSchedulePublished, scheduleID, ownerID, name, startDate, endDate, employeeIDs)
}

func NewScheduleUnpublishedEvent(scheduleID, ownerID, name, startDate, endDate string, employeeIDs []string) *ScheduleEvent {
	return newScheduleEvent(EventTypeScheduleUnpublished, scheduleID, ownerID, name, startDate, endDate, employeeIDs)
}

func NewScheduleGeneratedEvent(scheduleID, ownerID, name, startDate, endDate string, employeeIDs []string) *ScheduleEvent {
	return newScheduleEvent(EventTypeScheduleGenerated, scheduleID, ownerID, name, startDate, endDate, employeeIDs)
}
