package moderation

import (
	"errors"
	"strings"
)

var (
	ErrAdminRequired     = errors.New("admin role required for moderation")
	ErrReasonRequired    = errors.New("rejection requires a reason")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status is the moderation state of a post.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Request describes a single transition attempt against a post.
type Request struct {
	To           Status
	Reason       string
	ActorIsAdmin bool
}

// allowed holds the legal edges of the state machine.
// Self-loops on pending and approved make disapprove and re-approve idempotent.
var allowed = map[Status]map[Status]bool{
	StatusPending: {
		StatusApproved: true,
		StatusRejected: true,
		StatusPending:  true,
	},
	StatusApproved: {
		StatusPending:  true,
		StatusApproved: true,
	},
	StatusRejected: {
		StatusPending:  true,
		StatusApproved: true,
	},
}

// Apply validates a transition request against the current status.
// It returns nil when the transition is legal; any error means the caller
// must leave the post untouched. Apply itself has no side effects.
func Apply(current Status, req Request) error {
	if !req.ActorIsAdmin {
		return ErrAdminRequired
	}
	if !current.Valid() || !req.To.Valid() {
		return ErrInvalidTransition
	}
	if !allowed[current][req.To] {
		return ErrInvalidTransition
	}
	if req.To == StatusRejected && strings.TrimSpace(req.Reason) == "" {
		return ErrReasonRequired
	}
	return nil
}
