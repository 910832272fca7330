package domain

import (
	"time"
)

// Service represents a home service offered by a provider in the catalog.
type Service struct {
	ID            string    `json:"id"`
	ProviderEmail string    `json:"provider_email"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	ImageURL      string    `json:"image_url"`
	RatingsCount  int64     `json:"ratings_count"`
	AverageRating *float64  `json:"average_rating,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BannerItem is the projection of a service shown on the landing banner.
type BannerItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}
