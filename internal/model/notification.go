package model

import (
	"time"
)

type NotificationStatus string

const (
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
	NotificationStatusSkipped NotificationStatus = "skipped"
)

// Notification is one confirmation email rendered from a BookingEvent.
type Notification struct {
	EventType string
	Recipient string
	Subject   string
	Content   string
	Status    NotificationStatus
	LastError string
	SentAt    time.Time
}
