package models

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// UserRecord is the authenticated user's profile as returned by the API and
// cached locally for degraded mode.
type UserRecord struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
}

// DefaultRole is assumed when the API omits the role claim.
const DefaultRole = "client"

// Submission provides a client-generated ULID for records created offline or
// before the API assigns its own identifier.
type Submission struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewSubmission stamps a fresh submission envelope.
func NewSubmission() Submission {
	return Submission{
		ID:          ulid.Make().String(),
		SubmittedAt: time.Now().UTC(),
	}
}

// Contact is a message sent through the site's contact form.
type Contact struct {
	Submission
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,e164"`
	Service string `json:"service,omitempty"`
	Message string `json:"message" validate:"required,min=10"`
	Replied bool   `json:"replied"`
}

// Review is a customer review with a 1-5 star rating.
type Review struct {
	Submission
	Author  string `json:"author" validate:"required,min=2"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=5"`
}

// Booking is an appointment request for a service. The backend owns the
// calendar; the client only submits and renders the confirmation.
type Booking struct {
	Submission
	Service string `json:"service" validate:"required"`
	When    string `json:"when" validate:"required"`
	Notes   string `json:"notes,omitempty"`
}

// Service is one bookable service offered by the business.
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int    `json:"price_cents"`
	Duration    string `json:"duration"`
	Active      bool   `json:"active"`
}

// Document is a file attached to the authenticated user's account.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// SignupRequest is the payload assembled by the signup wizard. Each step
// validates its own fields before the wizard moves on.
type SignupRequest struct {
	Submission
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,min=2"`
	LastName  string `json:"last_name" validate:"required,min=2"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
	Service   string `json:"service,omitempty"`
}
