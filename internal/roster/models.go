// Package roster holds the people and place records the scheduler reads:
// the establishment with its visiting rules, the inmate census, and the
// registered visitors. Mutations go through the Service; the scheduler
// only ever reads.
package roster

import (
	"strings"
	"time"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// PartyStatus marks whether an inmate or visitor can take part in visits.
type PartyStatus string

const (
	StatusActive   PartyStatus = "ACTIVE"
	StatusInactive PartyStatus = "INACTIVE"
)

// ParsePartyStatus validates a status string from the API boundary.
func ParsePartyStatus(raw string) (PartyStatus, error) {
	switch PartyStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "status must be ACTIVE or INACTIVE")
	}
}

// Establishment is the facility this engine schedules visits for. One
// engine instance serves exactly one establishment; its visiting rules
// are immutable for the life of the process.
//
// OneVisitPerDay is the local duplicate policy: when set, an inmate may
// receive at most one admitted visit per civil date regardless of slot.
type Establishment struct {
	ID             id.EstablishmentID     `json:"id"`
	Name           string                 `json:"name"`
	Rules          calendar.VisitingRules `json:"-"`
	OneVisitPerDay bool                   `json:"one_visit_per_day"`
	CreatedAt      time.Time              `json:"created_at"`
}

// NewEstablishment validates and builds an establishment record.
func NewEstablishment(establishmentID id.EstablishmentID, name string, rules calendar.VisitingRules, oneVisitPerDay bool, now time.Time) (*Establishment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "establishment name cannot be empty")
	}
	if len(rules.Days) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "establishment requires visiting rules")
	}
	return &Establishment{
		ID:             establishmentID,
		Name:           name,
		Rules:          rules,
		OneVisitPerDay: oneVisitPerDay,
		CreatedAt:      now,
	}, nil
}

// Inmate is one census record.
//
// Invariants:
//   - FileNumber is non-empty and unique within the establishment
//   - Status is ACTIVE or INACTIVE; INACTIVE inmates cannot receive visits
type Inmate struct {
	ID         id.InmateID `json:"id"`
	FileNumber string      `json:"file_number"`
	CellBlock  string      `json:"cell_block"`
	Floor      int         `json:"floor"`
	Status     PartyStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (i *Inmate) IsActive() bool {
	return i.Status == StatusActive
}

// NewInmate validates and builds an inmate record.
func NewInmate(inmateID id.InmateID, fileNumber, cellBlock string, floor int, now time.Time) (*Inmate, error) {
	fileNumber = strings.TrimSpace(fileNumber)
	if fileNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "file number cannot be empty")
	}
	if len(fileNumber) > 32 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "file number must be 32 characters or less")
	}
	return &Inmate{
		ID:         inmateID,
		FileNumber: fileNumber,
		CellBlock:  strings.TrimSpace(cellBlock),
		Floor:      floor,
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Visitor is one registered visitor record.
//
// Invariants:
//   - NationalID is non-empty and unique
//   - Status is ACTIVE or INACTIVE; INACTIVE visitors cannot visit
type Visitor struct {
	ID         id.VisitorID `json:"id"`
	NationalID string       `json:"national_id"`
	FullName   string       `json:"full_name"`
	Status     PartyStatus  `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (v *Visitor) IsActive() bool {
	return v.Status == StatusActive
}

// NewVisitor validates and builds a visitor record.
func NewVisitor(visitorID id.VisitorID, nationalID, fullName string, now time.Time) (*Visitor, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "national id cannot be empty")
	}
	if len(nationalID) > 20 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "national id must be 20 characters or less")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full name cannot be empty")
	}
	if len(fullName) > 128 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full name must be 128 characters or less")
	}
	return &Visitor{
		ID:         visitorID,
		NationalID: nationalID,
		FullName:   fullName,
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
