package lot

import (
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Party is one of the three counterpart roles on a lot (producer, supplier,
// client). A party is either a known platform entity (EntityID set) or a
// free-text counterpart (Name set); the two forms are mutually exclusive.
type Party struct {
	EntityID *uuid.UUID `gorm:"type:uuid" json:"entity_id,omitempty"`
	Name     string     `json:"name,omitempty"`
}

// KnownParty builds a party referencing a platform entity
func KnownParty(entityID uuid.UUID) Party {
	return Party{EntityID: &entityID}
}

// UnknownParty builds a free-text party
func UnknownParty(name string) Party {
	return Party{Name: name}
}

// IsKnown returns true when the party references a platform entity
func (p Party) IsKnown() bool {
	return p.EntityID != nil
}

// IsZero returns true when neither form is set
func (p Party) IsZero() bool {
	return p.EntityID == nil && p.Name == ""
}

// DisplayName returns the grouping name for summaries; unknown parties with
// no name group under a shared bucket
func (p Party) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.EntityID != nil {
		return p.EntityID.String()
	}
	return "unknown"
}

// Validate refuses a party carrying both forms at once
func (p Party) Validate() error {
	if p.EntityID != nil && p.Name != "" {
		return shared.NewDomainError("AMBIGUOUS_PARTY", "A party is either a known entity or a free-text counterpart, not both")
	}
	return nil
}

// Site is a production or delivery site, known-or-unknown like a party, and
// always carrying a country code
type Site struct {
	SiteID  *uuid.UUID `gorm:"type:uuid" json:"site_id,omitempty"`
	Name    string     `json:"name,omitempty"`
	Country string     `json:"country"`
}

// KnownSite builds a site referencing a registered site
func KnownSite(siteID uuid.UUID, country string) Site {
	return Site{SiteID: &siteID, Country: country}
}

// UnknownSite builds a free-text site
func UnknownSite(name, country string) Site {
	return Site{Name: name, Country: country}
}

// IsKnown returns true when the site references a registered site
func (s Site) IsKnown() bool {
	return s.SiteID != nil
}

// Validate refuses a site carrying both forms at once
func (s Site) Validate() error {
	if s.SiteID != nil && s.Name != "" {
		return shared.NewDomainError("AMBIGUOUS_SITE", "A site is either a registered site or a free-text one, not both")
	}
	return nil
}
