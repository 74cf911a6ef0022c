// Package types provides type definitions for structured data used throughout the outreach-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// Company is a single outreach target. Identity is the domain.
type Company struct {
	Name    string `json:"name" validate:"required"`
	Domain  string `json:"domain" validate:"required,fqdn"`
	Website string `json:"website" validate:"required,url"`
}

// Validate validates the Company using the validator.
func (c *Company) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// CompanyProfile holds the static facts used to personalise an email for a company.
type CompanyProfile struct {
	Business    string `json:"business"`
	KeyProducts string `json:"key_products,omitempty"`
	RecentNews  string `json:"recent_news,omitempty"`
	Culture     string `json:"culture"`
}

// SenderProfile describes the person the outreach emails are written for.
type SenderProfile struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Year           string `json:"year"`
	Experience     string `json:"experience"`
	Skills         string `json:"skills"`
	CurrentRole    string `json:"current_role"`
	Education      string `json:"education"`
	Achievements   string `json:"achievements"`
	GraduationYear string `json:"graduation_year"`
}

// Validate validates the SenderProfile using the validator.
func (s *SenderProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}
