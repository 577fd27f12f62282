package domain

import (
	"time"

	"github.com/google/uuid"
)

// Legislator is an elected official with a historical voting record. The
// entity itself is immutable after load; votes live in LegislatorVote
// records so a voting record can be queried without loading the entity.
type Legislator struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Party          string          `json:"party"`
	State          string          `json:"state"`
	District       string          `json:"district,omitempty"`
	Chamber        string          `json:"chamber"`
	ImageURL       string          `json:"image_url,omitempty"`
	TopIssues      []string        `json:"top_issues"`
	Contact        ContactInfo     `json:"contact"`
	SocialMedia    SocialMedia     `json:"social_media"`
	FundingRecords []FundingRecord `json:"funding_records"`
}

// Clone returns a deep copy safe to hand out across the store boundary.
func (l Legislator) Clone() Legislator {
	c := l
	c.TopIssues = append([]string(nil), l.TopIssues...)
	c.FundingRecords = append([]FundingRecord(nil), l.FundingRecords...)
	return c
}

// DisplayName implements Filterable.
func (l Legislator) DisplayName() string { return l.Name }

// Matches implements Filterable. Unknown keys do not restrict.
func (l Legislator) Matches(key string, values map[string]struct{}) bool {
	switch key {
	case "parties":
		_, ok := values[l.Party]
		return ok
	case "states":
		_, ok := values[l.State]
		return ok
	case "chambers":
		_, ok := values[l.Chamber]
		return ok
	}
	return true
}

// ContactInfo holds a legislator's public contact details.
type ContactInfo struct {
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Office string `json:"office"`
}

// SocialMedia holds optional social handles.
type SocialMedia struct {
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// FundingRecord is a read-only campaign funding entry attached to a
// legislator. Amount is never negative.
type FundingRecord struct {
	Source string    `json:"source"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}
