package models

import "time"

// Country is an entry of the static country catalog
type Country struct {
	Code string
	Name string
}

// VisitedCountry is one ledger row
type VisitedCountry struct {
	UserID      int64
	CountryCode string
	CreatedAt   time.Time
}
