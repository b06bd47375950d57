package domain

import (
	"time"
)

// Product represents a single catalog entry.
// The json tags correspond to the fields expected in API responses/requests.
type Product struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"` // Unique and immutable after creation
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"` // Pointer for nullable fields
	Category    string    `json:"category"`              // Flat label, not a foreign entity
	Price       float64   `json:"price"`                 // For currency, consider a dedicated decimal type in production for precision
	Rating      float64   `json:"rating"`                // 0 to 5
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"` // Default recency ordering key
}

// CategoryCount is one row of the grouped category listing.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
