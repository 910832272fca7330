package domain

import (
	"time"
)

// Review represents a service review submitted by a user. Reviews are
// append-only: they are never updated or individually deleted.
type Review struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photo_url"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewSummary is the flattened cross-service projection of a review used by
// the site-wide testimonial listing.
type ReviewSummary struct {
	ServiceName string `json:"service_name"`
	UserName    string `json:"user_name"`
	PhotoURL    string `json:"photo_url"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}
