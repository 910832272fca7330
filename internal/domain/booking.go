package domain

import (
	"time"
)

// Booking represents a confirmed booking of a service by a user. The service
// name and price are snapshotted at booking time so later catalog edits do not
// rewrite booking history.
type Booking struct {
	ID          string    `json:"id"`
	ServiceID   string    `json:"service_id"`
	UserEmail   string    `json:"user_email"`
	ServiceName string    `json:"service_name"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}
