package model

import "time"

const (
	NotificationRegistrationRequest = "registration_request"
	NotificationAccountApproved     = "account_approved"
)

// Notification is the job payload carried on the notification queue.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
