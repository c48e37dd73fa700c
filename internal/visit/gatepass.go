package visit

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// GeneratePassCode creates the one-time gate pass code handed out with an
// admission. Returns a base64-encoded string with 128 bits of entropy; the
// caller sees it exactly once and the ledger keeps only its hash.
func GeneratePassCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate pass code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashPassCode creates a bcrypt hash of the pass code for ledger storage.
func HashPassCode(code string) (string, error) {
	if code == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "pass code cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "pass code is too long")
		}
		return "", fmt.Errorf("could not hash pass code: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassCode reports whether a presented code matches the stored hash.
// A mismatch is an expected gate-check outcome, not an error.
func VerifyPassCode(code, hash string) (bool, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("could not verify pass code: %w", err)
	}
	return true, nil
}
