package domain

import "time"

// Topics carried by the broker. One fixed payload schema per topic.
const (
	TopicUserLogin           = "user-login"
	TopicAvailabilityCreated = "availability-created"
	TopicAppointmentCreated  = "appointment-created"
)

// Weekdays recognized by availability declarations, in schedule order.
var Weekdays = []string{
	"MONDAY",
	"TUESDAY",
	"WEDNESDAY",
	"THURSDAY",
	"FRIDAY",
	"SATURDAY",
	"SUNDAY",
}

// IsWeekday reports whether day is one of the seven recognized names.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// LoginEvent represents the payload for user-login messages.
type LoginEvent struct {
	UserID    string
	Email     string
	Phone     string
	Role      Role
	Timestamp time.Time
}

// AvailabilityDeclaredEvent represents the payload for a single
// availability-created message. A multi-day submission decomposes into one
// event per declared day, all sharing the same time window.
type AvailabilityDeclaredEvent struct {
	AdminID   string
	DayOfWeek string
	StartTime string
	EndTime   string
}

// AvailabilityDeclaration is the inbound shape of an availability submission
// before decomposition.
type AvailabilityDeclaration struct {
	AdminID       string
	AvailableDays []string
	StartTime     string
	EndTime       string
}

// Events expands the declaration into independent per-day events.
func (d AvailabilityDeclaration) Events() []AvailabilityDeclaredEvent {
	events := make([]AvailabilityDeclaredEvent, 0, len(d.AvailableDays))
	for _, day := range d.AvailableDays {
		events = append(events, AvailabilityDeclaredEvent{
			AdminID:   d.AdminID,
			DayOfWeek: day,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
		})
	}
	return events
}

// AppointmentRequestedEvent represents the payload for appointment-created messages.
type AppointmentRequestedEvent struct {
	UserID          string
	UserName        string
	AdminID         string
	AppointmentName string
	Date            string
	Time            string
	Details         string
}
