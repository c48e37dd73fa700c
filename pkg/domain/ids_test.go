package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseInmateID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseInmateID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseInmateID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseInmateID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, InmateID(validUUID), id)
	})
}

// TestParseID_SecurityInvariants validates trust-boundary parsing rules:
// parsing must reject attack vectors at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE visits;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVisitorID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestTypeDistinction verifies the compiler enforces type safety between
// inmate and visitor identifiers. If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	inmateID := InmateID(uuid.New())
	visitorID := VisitorID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ InmateID = visitorID   // compile error
	// var _ VisitorID = inmateID   // compile error

	assert.NotEqual(t, uuid.UUID(inmateID), uuid.UUID(visitorID))
}

// TestAllIDTypes_ConsistentBehavior ensures all ID types share identical
// parsing behavior. Inconsistent validation across ID types would let bad
// input through one boundary but not another.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errEstablishment := ParseEstablishmentID(validUUID)
		_, errInmate := ParseInmateID(validUUID)
		_, errVisitor := ParseVisitorID(validUUID)
		_, errAuthorization := ParseAuthorizationID(validUUID)
		_, errVisit := ParseVisitID(validUUID)

		require.NoError(t, errEstablishment)
		require.NoError(t, errInmate)
		require.NoError(t, errVisitor)
		require.NoError(t, errAuthorization)
		require.NoError(t, errVisit)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errEstablishment := ParseEstablishmentID(input)
			_, errInmate := ParseInmateID(input)
			_, errVisitor := ParseVisitorID(input)
			_, errAuthorization := ParseAuthorizationID(input)
			_, errVisit := ParseVisitID(input)

			require.Error(t, errEstablishment)
			require.Error(t, errInmate)
			require.Error(t, errVisitor)
			require.Error(t, errAuthorization)
			require.Error(t, errVisit)
		})
	}
}

// TestIDJSONRoundTrip pins the wire representation: typed ids marshal as
// canonical UUID strings, not as the underlying byte array.
func TestIDJSONRoundTrip(t *testing.T) {
	original := InmateID(uuid.New())

	raw, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"`+original.String()+`"`, string(raw))

	var decoded InmateID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original, decoded)

	t.Run("rejects nil UUID on unmarshal", func(t *testing.T) {
		var target VisitorID
		err := json.Unmarshal([]byte(`"`+uuid.Nil.String()+`"`), &target)
		require.Error(t, err)
	})
}

// FuzzParseInmateID checks the round-trip invariant: any accepted input
// must survive String() and reparse to the same value.
func FuzzParseInmateID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE visits;--")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseInmateID(input)
		if err != nil {
			return
		}
		roundTrip, err2 := ParseInmateID(id.String())
		if err2 != nil {
			t.Errorf("valid ID failed round-trip: %v", err2)
		}
		if roundTrip != id {
			t.Error("round-trip changed ID value")
		}
	})
}
