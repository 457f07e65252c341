package models

import "time"

// Типы документов (documents.name).
const (
	DocCertificate = "certificate"
	DocTestimonial = "testimonial"
	DocTranscript  = "transcript"
	DocAppeared    = "appeared"
)

// Статусы заявок (request_statuses.name).
const (
	RequestPending  = "Pending"
	RequestAccepted = "Accepted"
	RequestRejected = "Rejected"
)

type ServiceRequest struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Document  string    `json:"document"`
	Status    string    `json:"status"`
	Serial    *string   `json:"serial,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServicesOverview — агрегаты для админского отчёта.
type ServicesOverview struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Students int `json:"students"`
	Alumni   int `json:"alumni"`
	Revenue  int `json:"revenue"`
}
