package domain

import "time"

// InsuranceCompany is reference data for the insurer a claim is filed with.
type InsuranceCompany struct {
	ID          int
	Name        string
	ShortName   string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
	Email       string
	Phone       string
	Notes       string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
