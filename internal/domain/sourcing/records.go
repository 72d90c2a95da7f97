// Package sourcing defines the persisted record types of the discovery domain
// and the repository contracts the infrastructure layer implements.  Rows
// coming out of the table parser are converted into these typed records
// immediately so validation and persistence never handle loosely shaped maps.
package sourcing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Flag is a tri-state regulatory indicator (USDMF, CEP).
type Flag string

const (
	FlagYes     Flag = "Yes"
	FlagNo      Flag = "No"
	FlagUnknown Flag = "Unknown"
)

// ParseFlag maps arbitrary cell text onto a Flag, defaulting to Unknown.
func ParseFlag(s string) Flag {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return FlagYes
	case "no", "n", "false":
		return FlagNo
	default:
		return FlagUnknown
	}
}

// ManufacturerRecord is one discovered API manufacturer.
// Uniqueness: (APIName, Manufacturer, Country); re-insertion is a no-op.
type ManufacturerRecord struct {
	ID           int64     `json:"id"`
	APIName      string    `json:"api_name"`
	Manufacturer string    `json:"manufacturer"`
	Country      string    `json:"country"`
	USDMF        Flag      `json:"usdmf"`
	CEP          Flag      `json:"cep"`
	SourceName   string    `json:"source_name"`
	SourceURL    string    `json:"source_url"`
	ImportedAt   time.Time `json:"imported_at"`
}

// Key returns the case-insensitive identity key used for skip-set dedup.
func (r ManufacturerRecord) Key() string {
	return strings.ToLower(fmt.Sprintf("%s|%s|%s", r.APIName, r.Manufacturer, r.Country))
}

// BuyerRecord is one discovered finished-dosage-form buyer.
// Uniqueness: (API, Country, Company).
type BuyerRecord struct {
	ID                 int64     `json:"id"`
	Company            string    `json:"company"`
	Form               string    `json:"form"`
	Strength           string    `json:"strength"`
	VerificationSource string    `json:"verification_source"`
	Confidence         int       `json:"confidence"`
	URL                string    `json:"url"`
	AdditionalInfo     string    `json:"additional_info"`
	API                string    `json:"api"`
	Country            string    `json:"country"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Key returns the case-insensitive identity key used for skip-set dedup.
func (r BuyerRecord) Key() string {
	return strings.ToLower(fmt.Sprintf("%s|%s|%s", r.API, r.Country, r.Company))
}

// ParseConfidence converts a confidence cell ("85", "85%", garbage) into a
// 0-100 integer.  Non-numeric input yields 0 so hallucinated cells fail the
// threshold instead of erroring.
func ParseConfidence(cell string) int {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cell), "%"))
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// SkipSet is a case-insensitive set of identity keys already known to
// storage, consulted before accepting newly discovered rows.
type SkipSet map[string]struct{}

// NewSkipSet builds a SkipSet from raw keys, lowercasing each.
func NewSkipSet(keys ...string) SkipSet {
	s := make(SkipSet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts key case-insensitively.
func (s SkipSet) Add(key string) {
	s[strings.ToLower(strings.TrimSpace(key))] = struct{}{}
}

// Contains reports whether key is present, case-insensitively.
func (s SkipSet) Contains(key string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

//Personal.AI order the ending
