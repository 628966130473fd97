package kafka

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
)

// Envelope is the canonical serialized event record. The wire format is the
// flat payload object the downstream consumers already understand; producedAt
// feeds the timestamp field where a topic schema carries one.
type Envelope struct {
	topic      string
	key        string
	payload    map[string]any
	producedAt time.Time
}

func (e *Envelope) Topic() string { return e.topic }

func (e *Envelope) Key() string { return e.key }

// ProducedAt reports when the envelope was constructed.
func (e *Envelope) ProducedAt() time.Time { return e.producedAt }

// Field returns a payload field value.
func (e *Envelope) Field(name string) any { return e.payload[name] }

// Encode marshals the payload to JSON.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e.payload)
}

// topicSchemas fixes the required payload fields per topic. Every field must
// be present and non-empty; unknown fields are rejected at construction time.
var topicSchemas = map[string][]string{
	domain.TopicUserLogin:           {"userId", "email", "phone", "role", "timestamp"},
	domain.TopicAvailabilityCreated: {"adminId", "dayOfWeek", "startTime", "endTime"},
	domain.TopicAppointmentCreated:  {"userId", "userName", "adminId", "appointmentName", "date", "time", "details"},
}

// optionalFields may be empty but are still part of the schema.
var optionalFields = map[string]map[string]bool{
	domain.TopicUserLogin:          {"phone": true},
	domain.TopicAppointmentCreated: {"details": true},
}

// clock is swapped in tests for deterministic producedAt stamps.
var clock = func() time.Time { return time.Now().UTC() }

// BuildEnvelope maps a (topic, key, fields) triple to a canonical envelope.
// Deterministic apart from the producedAt stamp; no I/O. Schema violations
// report domain.InvalidEventPayloadError naming every offending field.
func BuildEnvelope(topic, key string, fields map[string]any) (*Envelope, error) {
	required, ok := topicSchemas[topic]
	if !ok {
		return nil, &domain.InvalidEventPayloadError{Topic: topic, Fields: []string{"topic"}}
	}

	producedAt := clock()

	payload := make(map[string]any, len(required))
	for name, value := range fields {
		payload[name] = value
	}

	// The login schema's timestamp is the production instant.
	if topic == domain.TopicUserLogin {
		if _, present := payload["timestamp"]; !present {
			payload["timestamp"] = producedAt.Format(time.RFC3339)
		}
	}

	var offending []string

	known := make(map[string]bool, len(required))
	for _, name := range required {
		known[name] = true
		value, present := payload[name]
		if !present {
			offending = append(offending, name)
			continue
		}
		if optionalFields[topic][name] {
			continue
		}
		if s, isString := value.(string); isString && s == "" {
			offending = append(offending, name)
		}
	}

	for name := range payload {
		if !known[name] {
			offending = append(offending, name)
		}
	}

	if day, isString := payload["dayOfWeek"].(string); topic == domain.TopicAvailabilityCreated && isString && day != "" {
		if !domain.IsWeekday(day) {
			offending = append(offending, "dayOfWeek")
		}
	}

	if len(offending) > 0 {
		sort.Strings(offending)
		return nil, &domain.InvalidEventPayloadError{Topic: topic, Fields: offending}
	}

	return &Envelope{
		topic:      topic,
		key:        key,
		payload:    payload,
		producedAt: producedAt,
	}, nil
}

// LoginEnvelope builds the user-login envelope for a completed credential check.
func LoginEnvelope(event domain.LoginEvent) (*Envelope, error) {
	fields := map[string]any{
		"userId": event.UserID,
		"email":  event.Email,
		"phone":  event.Phone,
		"role":   string(event.Role),
	}
	if !event.Timestamp.IsZero() {
		fields["timestamp"] = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return BuildEnvelope(domain.TopicUserLogin, event.UserID, fields)
}

// AvailabilityEnvelope builds one availability-created envelope for a single
// declared day.
func AvailabilityEnvelope(event domain.AvailabilityDeclaredEvent) (*Envelope, error) {
	return BuildEnvelope(domain.TopicAvailabilityCreated, event.AdminID, map[string]any{
		"adminId":   event.AdminID,
		"dayOfWeek": event.DayOfWeek,
		"startTime": event.StartTime,
		"endTime":   event.EndTime,
	})
}

// AppointmentEnvelope builds the appointment-created envelope.
func AppointmentEnvelope(event domain.AppointmentRequestedEvent) (*Envelope, error) {
	return BuildEnvelope(domain.TopicAppointmentCreated, event.UserID, map[string]any{
		"userId":          event.UserID,
		"userName":        event.UserName,
		"adminId":         event.AdminID,
		"appointmentName": event.AppointmentName,
		"date":            event.Date,
		"time":            event.Time,
		"details":         event.Details,
	})
}

var _ port.Envelope = (*Envelope)(nil)
