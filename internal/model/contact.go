// Package model defines the core entities shared across the pipeline.
package model

import "strings"

// Contact is a CRM contact record. The pipeline never mutates contacts;
// they are fetched fresh at the start of every run.
type Contact struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	JobTitle    string `json:"jobtitle"`
	Phone       string `json:"phone"`
	MobilePhone string `json:"mobilephone"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`

	// TimezoneHint is the CRM-native timezone property. When set it is
	// trusted verbatim and overrides state/phone resolution.
	TimezoneHint string `json:"hs_timezone"`
}

// FullName returns the display name, falling back to "Contact <id>".
func (c Contact) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name == "" {
		return "Contact " + c.ID
	}
	return name
}

// BestPhone returns the primary phone, falling back to mobile.
func (c Contact) BestPhone() string {
	if strings.TrimSpace(c.Phone) != "" {
		return c.Phone
	}
	return c.MobilePhone
}
