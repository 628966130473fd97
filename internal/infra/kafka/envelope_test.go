package kafka

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/bookwise/booking-platform/internal/core/domain"
)

func withFixedClock(t *testing.T, at time.Time) {
	t.Helper()
	previous := clock
	clock = func() time.Time { return at }
	t.Cleanup(func() { clock = previous })
}

func TestLoginEnvelopeStampsTimestamp(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	withFixedClock(t, fixed)

	envelope, err := LoginEnvelope(domain.LoginEvent{
		UserID: "user-1",
		Email:  "jane@example.com",
		Phone:  "+15550100",
		Role:   domain.RoleClient,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := envelope.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := map[string]string{
		"userId":    "user-1",
		"email":     "jane@example.com",
		"phone":     "+15550100",
		"role":      "client",
		"timestamp": "2025-03-14T09:30:00Z",
	}
	if !reflect.DeepEqual(payload, want) {
		t.Fatalf("payload = %v, want %v", payload, want)
	}

	if envelope.Topic() != domain.TopicUserLogin {
		t.Fatalf("topic = %q", envelope.Topic())
	}
	if envelope.Key() != "user-1" {
		t.Fatalf("key = %q", envelope.Key())
	}
}

func TestLoginEnvelopeAllowsEmptyPhone(t *testing.T) {
	envelope, err := LoginEnvelope(domain.LoginEvent{
		UserID: "user-1",
		Email:  "jane@example.com",
		Role:   domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envelope.Field("phone") != "" {
		t.Fatalf("phone = %v, want empty", envelope.Field("phone"))
	}
}

func TestBuildEnvelopeNamesOffendingFieldsSorted(t *testing.T) {
	_, err := BuildEnvelope(domain.TopicAppointmentCreated, "user-1", map[string]any{
		"userId":  "user-1",
		"details": "",
	})

	payloadErr := domain.AsInvalidEventPayload(err)
	if payloadErr == nil {
		t.Fatalf("expected InvalidEventPayloadError, got %v", err)
	}

	want := []string{"adminId", "appointmentName", "date", "time", "userName"}
	if !reflect.DeepEqual(payloadErr.Fields, want) {
		t.Fatalf("fields = %v, want %v", payloadErr.Fields, want)
	}
}

func TestBuildEnvelopeRejectsUnknownField(t *testing.T) {
	_, err := BuildEnvelope(domain.TopicAvailabilityCreated, "admin-1", map[string]any{
		"adminId":   "admin-1",
		"dayOfWeek": "MONDAY",
		"startTime": "09:00",
		"endTime":   "17:00",
		"notes":     "extra",
	})

	payloadErr := domain.AsInvalidEventPayload(err)
	if payloadErr == nil {
		t.Fatalf("expected InvalidEventPayloadError, got %v", err)
	}
	if !reflect.DeepEqual(payloadErr.Fields, []string{"notes"}) {
		t.Fatalf("fields = %v, want [notes]", payloadErr.Fields)
	}
}

func TestAvailabilityEnvelopeRejectsUnknownWeekday(t *testing.T) {
	_, err := AvailabilityEnvelope(domain.AvailabilityDeclaredEvent{
		AdminID:   "admin-1",
		DayOfWeek: "Monday",
		StartTime: "09:00",
		EndTime:   "17:00",
	})

	payloadErr := domain.AsInvalidEventPayload(err)
	if payloadErr == nil {
		t.Fatalf("expected InvalidEventPayloadError, got %v", err)
	}
	if !reflect.DeepEqual(payloadErr.Fields, []string{"dayOfWeek"}) {
		t.Fatalf("fields = %v, want [dayOfWeek]", payloadErr.Fields)
	}
}

func TestBuildEnvelopeRejectsUnknownTopic(t *testing.T) {
	_, err := BuildEnvelope("user-signup", "key", nil)
	if !domain.IsInvalidEventPayload(err) {
		t.Fatalf("expected InvalidEventPayloadError, got %v", err)
	}
}

func TestAppointmentEnvelopeRoundTrip(t *testing.T) {
	envelope, err := AppointmentEnvelope(domain.AppointmentRequestedEvent{
		UserID:          "user-1",
		UserName:        "Jane Doe",
		AdminID:         "admin-1",
		AppointmentName: "Consultation",
		Date:            "2025-04-01",
		Time:            "10:00",
		Details:         "",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := envelope.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if payload["appointmentName"] != "Consultation" {
		t.Fatalf("appointmentName = %q", payload["appointmentName"])
	}
	if payload["details"] != "" {
		t.Fatalf("details = %q, want empty", payload["details"])
	}
	if envelope.Key() != "user-1" {
		t.Fatalf("key = %q", envelope.Key())
	}
}
