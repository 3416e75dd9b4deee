package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string
type NotificationStatus string

const (
	NotificationTypeBookingCreated   NotificationType = "booking_created"
	NotificationTypeBookingConfirmed NotificationType = "booking_confirmed"
	NotificationTypeBookingCancelled NotificationType = "booking_cancelled"
	NotificationTypeBookingReminder  NotificationType = "booking_reminder"
	NotificationTypeBookingNoShow    NotificationType = "booking_no_show"

	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is a best-effort delivery record. The booking core only writes
// these; actual delivery belongs to an external collaborator and a failure
// here never fails the booking operation that requested it.
type Notification struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID     `json:"user_id" bson:"user_id" validate:"required"`
	BookingID primitive.ObjectID     `json:"booking_id" bson:"booking_id"`
	Type      NotificationType       `json:"type" bson:"type" validate:"required"`
	Status    NotificationStatus     `json:"status" bson:"status" default:"pending"`
	Title     string                 `json:"title" bson:"title" validate:"required"`
	Message   string                 `json:"message" bson:"message" validate:"required"`
	Data      map[string]interface{} `json:"data" bson:"data"`
	SentAt    *time.Time             `json:"sent_at" bson:"sent_at"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" bson:"updated_at"`
}
