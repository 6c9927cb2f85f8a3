package auth

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a tenant account. Every business object in the system
// hangs off a profile through its owner_id.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	BusinessName string    `json:"business_name"`
	BusinessType string    `json:"business_type,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	SIRET        *string   `json:"siret,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
