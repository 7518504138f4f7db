package model

import (
	"strings"
	"time"
)

// Customer is a guest identity keyed by email.  Customers are created on a
// first booking or newsletter signup and are never deleted.
type Customer struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	NewsletterOptIn bool      `json:"newsletterOptIn"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CustomerDetails is the contact block of a booking request.
type CustomerDetails struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,max=255,looseemail"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// NormalizeEmail lower-cases and trims an address; all email comparisons in
// the system go through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
