package handler

import (
	"strings"

	"github.com/JIATech/SIGVIP-sub002/internal/roster"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// RegisterInmateRequest is the HTTP request body for POST /inmates.
type RegisterInmateRequest struct {
	FileNumber string `json:"file_number"`
	CellBlock  string `json:"cell_block"`
	Floor      int    `json:"floor"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterInmateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.FileNumber = strings.TrimSpace(r.FileNumber)
	if r.FileNumber == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "file_number is required")
	}
	if r.Floor < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "floor must not be negative")
	}
	return nil
}

// RegisterVisitorRequest is the HTTP request body for POST /visitors.
type RegisterVisitorRequest struct {
	NationalID string `json:"national_id"`
	FullName   string `json:"full_name"`
}

func (r *RegisterVisitorRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.NationalID = strings.TrimSpace(r.NationalID)
	if r.NationalID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "national_id is required")
	}
	r.FullName = strings.TrimSpace(r.FullName)
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "full_name is required")
	}
	return nil
}

// SetStatusRequest is the HTTP request body for the status endpoints.
type SetStatusRequest struct {
	Status string `json:"status"`

	// Parsed value (populated by Validate)
	parsedStatus roster.PartyStatus
}

func (r *SetStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	status, err := roster.ParsePartyStatus(r.Status)
	if err != nil {
		return err
	}
	r.parsedStatus = status
	return nil
}

// ParsedStatus returns the validated status.
func (r *SetStatusRequest) ParsedStatus() roster.PartyStatus {
	return r.parsedStatus
}
