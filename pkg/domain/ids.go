// Package domain defines typed identifiers shared across modules.
//
// Each entity gets its own UUID-backed type so the compiler rejects
// cross-entity assignment (an InmateID can never be passed where a
// VisitorID is expected). Parse functions enforce the invariant that
// IDs are valid, non-empty, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

type (
	// EstablishmentID identifies a penitentiary establishment.
	EstablishmentID uuid.UUID

	// InmateID identifies an inmate.
	InmateID uuid.UUID

	// VisitorID identifies a registered visitor.
	VisitorID uuid.UUID

	// AuthorizationID identifies an (inmate, visitor) visiting authorization.
	AuthorizationID uuid.UUID

	// VisitID identifies a ledger visit record.
	VisitID uuid.UUID
)

func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseEstablishmentID parses and validates an establishment ID string.
func ParseEstablishmentID(raw string) (EstablishmentID, error) {
	u, err := parseUUID(raw, "establishment")
	return EstablishmentID(u), err
}

// ParseInmateID parses and validates an inmate ID string.
func ParseInmateID(raw string) (InmateID, error) {
	u, err := parseUUID(raw, "inmate")
	return InmateID(u), err
}

// ParseVisitorID parses and validates a visitor ID string.
func ParseVisitorID(raw string) (VisitorID, error) {
	u, err := parseUUID(raw, "visitor")
	return VisitorID(u), err
}

// ParseAuthorizationID parses and validates an authorization ID string.
func ParseAuthorizationID(raw string) (AuthorizationID, error) {
	u, err := parseUUID(raw, "authorization")
	return AuthorizationID(u), err
}

// ParseVisitID parses and validates a visit record ID string.
func ParseVisitID(raw string) (VisitID, error) {
	u, err := parseUUID(raw, "visit")
	return VisitID(u), err
}

func (id EstablishmentID) String() string { return uuid.UUID(id).String() }
func (id InmateID) String() string        { return uuid.UUID(id).String() }
func (id VisitorID) String() string       { return uuid.UUID(id).String() }
func (id AuthorizationID) String() string { return uuid.UUID(id).String() }
func (id VisitID) String() string         { return uuid.UUID(id).String() }

func (id EstablishmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id InmateID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id VisitorID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id AuthorizationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id VisitID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders ids in canonical UUID form. Defining a named type on
// top of uuid.UUID drops its methods, so without these the ids would
// marshal as raw byte arrays in JSON payloads and storage documents.

func (id EstablishmentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id InmateID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id VisitorID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id AuthorizationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id VisitID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }

func (id *EstablishmentID) UnmarshalText(text []byte) error {
	parsed, err := ParseEstablishmentID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *InmateID) UnmarshalText(text []byte) error {
	parsed, err := ParseInmateID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *VisitorID) UnmarshalText(text []byte) error {
	parsed, err := ParseVisitorID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *AuthorizationID) UnmarshalText(text []byte) error {
	parsed, err := ParseAuthorizationID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *VisitID) UnmarshalText(text []byte) error {
	parsed, err := ParseVisitID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
