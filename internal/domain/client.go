package domain

import "time"

// Client is an injured party the firm represents.
type Client struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Pesel            string
	IDNumber         string
	Street           string
	HouseNumber      string
	ApartmentNumber  string
	PostalCode       string
	City             string
	Notes            string
	GDPRConsent      bool
	MarketingConsent bool

	AssignedAgentID *string
	CreatedByUserID string
	DeletedByUserID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// FullName returns the display name used in listings and history views.
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
