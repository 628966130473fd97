package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/bookwise/booking-platform/internal/core/domain"
)

func TestDeclareRequiresAdminRole(t *testing.T) {
	publisher := &fakePublisher{}
	svc := NewAvailabilityService(publisher, zaptest.NewLogger(t))

	_, err := svc.Declare(context.Background(),
		domain.Principal{ID: "user-1", Role: domain.RoleClient},
		[]string{"MONDAY"}, "09:00", "17:00")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if len(publisher.declarations) != 0 {
		t.Fatal("no declaration expected for forbidden caller")
	}
}

func TestDeclareRequiresAuthentication(t *testing.T) {
	svc := NewAvailabilityService(&fakePublisher{}, zaptest.NewLogger(t))

	_, err := svc.Declare(context.Background(), domain.Principal{}, []string{"MONDAY"}, "09:00", "17:00")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestDeclareBindsAdminFromPrincipal(t *testing.T) {
	publisher := &fakePublisher{}
	svc := NewAvailabilityService(publisher, zaptest.NewLogger(t))

	delivered, err := svc.Declare(context.Background(),
		domain.Principal{ID: "admin-1", Role: domain.RoleAdmin},
		[]string{"MONDAY", "FRIDAY"}, "09:00", "17:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}
	if len(publisher.declarations) != 1 {
		t.Fatalf("declarations = %d, want 1", len(publisher.declarations))
	}
	if publisher.declarations[0].AdminID != "admin-1" {
		t.Fatalf("AdminID = %q, want the authenticated principal", publisher.declarations[0].AdminID)
	}
}

func TestDeclareReportsPartialFanOut(t *testing.T) {
	publisher := &fakePublisher{
		availabilityErr: &domain.PublishError{Delivered: 1, Err: domain.ErrPublishFailed},
		delivered:       1,
	}
	svc := NewAvailabilityService(publisher, zaptest.NewLogger(t))

	delivered, err := svc.Declare(context.Background(),
		domain.Principal{ID: "admin-1", Role: domain.RoleAdmin},
		[]string{"MONDAY", "TUESDAY"}, "09:00", "17:00")
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}
	if !errors.Is(err, domain.ErrPublishFailed) {
		t.Fatalf("err = %v, want ErrPublishFailed", err)
	}
}

func TestAppointmentRequestUsesStoredName(t *testing.T) {
	store := newFakeUserStore(testUser())
	publisher := &fakePublisher{}
	svc := NewAppointmentService(store, publisher, zaptest.NewLogger(t))

	err := svc.Request(context.Background(),
		domain.Principal{ID: "user-1", Role: domain.RoleClient},
		AppointmentRequest{
			AdminID:         "admin-1",
			AppointmentName: "Consultation",
			Date:            "2025-04-01",
			Time:            "10:00",
			Details:         "first visit",
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(publisher.appointments) != 1 {
		t.Fatalf("appointments = %d, want 1", len(publisher.appointments))
	}

	event := publisher.appointments[0]
	if event.UserName != "Jane Doe" {
		t.Fatalf("UserName = %q, want the stored profile name", event.UserName)
	}
	if event.UserID != "user-1" || event.AdminID != "admin-1" {
		t.Fatalf("event = %+v", event)
	}
}

func TestAppointmentRequestRequiresAuthentication(t *testing.T) {
	svc := NewAppointmentService(newFakeUserStore(), &fakePublisher{}, zaptest.NewLogger(t))

	err := svc.Request(context.Background(), domain.Principal{}, AppointmentRequest{AdminID: "admin-1"})
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestAppointmentRequestUnknownUser(t *testing.T) {
	svc := NewAppointmentService(newFakeUserStore(), &fakePublisher{}, zaptest.NewLogger(t))

	err := svc.Request(context.Background(),
		domain.Principal{ID: "ghost", Role: domain.RoleClient},
		AppointmentRequest{AdminID: "admin-1"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
