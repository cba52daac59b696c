// Package models defines the core domain records for the CRM:
// Company, CommunicationMethod and Communication, plus the partial-update
// structs used by the store.
package models

import (
	"time"
)

// Company is a tracked organization with a contact cadence. The JSON tags
// define the snapshot record layout.
type Company struct {
	// ID is the unique identifier, assigned at creation and immutable.
	ID int64 `json:"id"`
	// Name is the company's name. Required.
	Name string `json:"name"`
	// Location is an optional free-text location.
	Location string `json:"location,omitempty"`
	// LinkedInProfile is an optional profile URL.
	LinkedInProfile string `json:"linkedInProfile,omitempty"`
	// Emails holds zero or more contact addresses.
	Emails []string `json:"emails,omitempty"`
	// Phone is an optional contact number.
	Phone string `json:"phone,omitempty"`
	// Comments is optional free text.
	Comments string `json:"comments,omitempty"`
	// CommunicationPeriodicity is the number of days between required
	// contacts. Always >= 1; defaults to DefaultPeriodicity on create.
	CommunicationPeriodicity int `json:"communicationPeriodicity"`
}

// DefaultPeriodicity is applied when a company is created without a
// positive periodicity.
const DefaultPeriodicity = 30

// CommunicationMethod is one step of the admin-defined contact sequence.
type CommunicationMethod struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Sequence orders methods ascending. Values need not be unique or
	// contiguous; ties keep insertion order.
	Sequence int `json:"sequence"`
	// Mandatory methods cannot be skipped when advancing through the
	// sequence.
	Mandatory bool `json:"isMandatory"`
}

// Communication is one logged contact against a company. Records are
// append-only; the type is kept as plain text so history survives method
// edits and deletions.
type Communication struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"companyId"`
	Type      string    `json:"type"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes,omitempty"`
}

// CompanyUpdate carries the fields that can change on an existing company.
// Pointer types allow partial updates.
type CompanyUpdate struct {
	Name                     *string
	Location                 *string
	LinkedInProfile          *string
	Emails                   *[]string
	Phone                    *string
	Comments                 *string
	CommunicationPeriodicity *int
}

// MethodUpdate carries the fields that can change on an existing
// communication method.
type MethodUpdate struct {
	Name        *string
	Description *string
	Sequence    *int
	Mandatory   *bool
}
