package dto

import "time"

// CreateClientRequest payload.
type CreateClientRequest struct {
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	Pesel            string  `json:"pesel"`
	IDNumber         string  `json:"idNumber"`
	Street           string  `json:"street"`
	HouseNumber      string  `json:"houseNumber"`
	ApartmentNumber  string  `json:"apartmentNumber"`
	PostalCode       string  `json:"postalCode"`
	City             string  `json:"city"`
	Notes            string  `json:"notes"`
	GDPRConsent      bool    `json:"gdprConsent"`
	MarketingConsent bool    `json:"marketingConsent"`
	AssignedAgentID  *string `json:"assignedAgentId"`
}

// UpdateClientRequest payload. Absent fields are left unchanged.
type UpdateClientRequest struct {
	FirstName        *string `json:"firstName"`
	LastName         *string `json:"lastName"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Street           *string `json:"street"`
	HouseNumber      *string `json:"houseNumber"`
	ApartmentNumber  *string `json:"apartmentNumber"`
	PostalCode       *string `json:"postalCode"`
	City             *string `json:"city"`
	Notes            *string `json:"notes"`
	MarketingConsent *bool   `json:"marketingConsent"`
	AssignedAgentID  *string `json:"assignedAgentId"`
}

// ClientResponse representation.
type ClientResponse struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Pesel            string    `json:"pesel"`
	IDNumber         string    `json:"idNumber,omitempty"`
	Street           string    `json:"street,omitempty"`
	HouseNumber      string    `json:"houseNumber,omitempty"`
	ApartmentNumber  string    `json:"apartmentNumber,omitempty"`
	PostalCode       string    `json:"postalCode,omitempty"`
	City             string    `json:"city,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	GDPRConsent      bool      `json:"gdprConsent"`
	MarketingConsent bool      `json:"marketingConsent"`
	AssignedAgentID  *string   `json:"assignedAgentId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
