// Package audit captures who did what at the gate. Events flow from
// domain services through a buffered channel into sinks: an in-memory
// store for the recent-events endpoint and, when brokers are
// configured, a Kafka topic for downstream consumers.
package audit

import "time"

// Action identifies the kind of event being recorded.
type Action string

const (
	ActionInmateRegistered     Action = "inmate_registered"
	ActionInmateStatusChanged  Action = "inmate_status_changed"
	ActionVisitorRegistered    Action = "visitor_registered"
	ActionVisitorStatusChanged Action = "visitor_status_changed"
	ActionAuthorizationGranted Action = "authorization_granted"
	ActionAuthorizationRevoked Action = "authorization_revoked"
	ActionRestrictionAdded     Action = "restriction_added"
	ActionRestrictionLifted    Action = "restriction_lifted"
	ActionVisitAdmitted        Action = "visit_admitted"
	ActionVisitRejected        Action = "visit_rejected"
	ActionGatePassVerified     Action = "gate_pass_verified"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	StaffID   string    `json:"staff_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Device    string    `json:"device,omitempty"`
}
