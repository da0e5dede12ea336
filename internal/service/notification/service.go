package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/therapy-scheduler/internal/email"
	"github.com/jwalitptl/therapy-scheduler/internal/model"
	"github.com/jwalitptl/therapy-scheduler/pkg/logger"
	"github.com/jwalitptl/therapy-scheduler/pkg/messaging"
	"github.com/jwalitptl/therapy-scheduler/pkg/metrics"
)

// Service turns booking events into client emails. Failures are counted and
// logged; they never feed back into scheduling.
type Service struct {
	emailSvc email.Service
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func NewService(emailSvc email.Service, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		emailSvc: emailSvc,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Handle adapts Process to messaging.Handler.
func (s *Service) Handle(ctx context.Context, msg messaging.Message) error {
	_, err := s.Process(ctx, msg)
	return err
}

// Process renders and sends the email for one envelope. Events without a
// recipient, and event types that carry no email, are returned as skipped.
func (s *Service) Process(ctx context.Context, msg messaging.Message) (*model.Notification, error) {
	var event model.BookingEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}

	n, ok := Render(msg.Type, event)
	if !ok || n.Recipient == "" {
		n.Status = model.NotificationStatusSkipped
		s.log.Debug("notification skipped", "type", msg.Type, "client_id", event.ClientID)
		return n, nil
	}

	if err := s.emailSvc.Send(ctx, n.Recipient, n.Subject, n.Content); err != nil {
		n.Status = model.NotificationStatusFailed
		n.LastError = err.Error()
		s.metrics.NotificationsFailed.Inc()
		s.log.Error(err, "failed to send notification", "type", msg.Type, "client_id", event.ClientID)
		return n, err
	}

	n.Status = model.NotificationStatusSent
	n.SentAt = s.now()
	s.metrics.NotificationsSent.Inc()
	s.log.Info("notification sent", "type", msg.Type, "client_id", event.ClientID, "appointments", len(event.AppointmentIDs))
	return n, nil
}

// Render builds the email for an event type. ok is false for types that do
// not produce an email.
func Render(eventType string, event model.BookingEvent) (n *model.Notification, ok bool) {
	n = &model.Notification{
		EventType: eventType,
		Recipient: event.ClientEmail,
	}

	var b strings.Builder
	switch eventType {
	case model.EventAppointmentBooked:
		n.Subject = fmt.Sprintf("Appointment confirmed: %s", sessions(len(event.Dates)))
		fmt.Fprintf(&b, "Your %s appointment is booked.\n\n", event.Tab)
	case model.EventAppointmentCancelled:
		n.Subject = "Appointment cancelled"
		fmt.Fprintf(&b, "Your %s appointment has been cancelled.\n\n", event.Tab)
	default:
		return n, false
	}

	fmt.Fprintf(&b, "Time: %s\n", event.Slot)
	fmt.Fprintf(&b, "Room: %s\n", event.RoomName)
	fmt.Fprintf(&b, "With: %s\n", strings.Join(event.TherapistNames, ", "))
	b.WriteString("Dates:\n")
	for _, d := range event.Dates {
		fmt.Fprintf(&b, "  - %s\n", d)
	}
	n.Content = b.String()
	return n, true
}

func sessions(n int) string {
	if n == 1 {
		return "1 session"
	}
	return fmt.Sprintf("%d sessions", n)
}
