package appointments

import (
	"time"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// CreateAppointmentRequest is the payload for booking an appointment.
type CreateAppointmentRequest struct {
	ClientName  string    `json:"client_name" validate:"required,max=200"`
	ClientEmail string    `json:"client_email" validate:"omitempty,email"`
	ClientPhone string    `json:"client_phone" validate:"max=40"`
	ServiceType string    `json:"service_type" validate:"required,max=200"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Notes       *string   `json:"notes"`
	Address     string    `json:"address" validate:"max=500"`
}

// UpdateAppointmentRequest reschedules or re-describes an appointment.
type UpdateAppointmentRequest struct {
	ClientName  string    `json:"client_name" validate:"required,max=200"`
	ClientEmail string    `json:"client_email" validate:"omitempty,email"`
	ClientPhone string    `json:"client_phone" validate:"max=40"`
	ServiceType string    `json:"service_type" validate:"required,max=200"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Notes       *string   `json:"notes"`
	Address     string    `json:"address" validate:"max=500"`
}

// ListAppointmentsRequest carries listing filters. From and To bound
// the start time when non-zero.
type ListAppointmentsRequest struct {
	Status  Status
	From    time.Time
	To      time.Time
	Page    int
	PerPage int
}

// ListAppointmentsResponse is a paginated listing.
type ListAppointmentsResponse struct {
	Appointments []Appointment     `json:"appointments"`
	Pagination   shared.Pagination `json:"pagination"`
}
