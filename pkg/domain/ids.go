// Package domain holds typed identifiers shared across packages.
//
// Typed IDs keep a pool ID from being passed where a user ID is expected. Parse
// functions are the trust boundary: handlers call them on raw input and get a
// CodeInvalidInput domain error for anything that is not a non-nil UUID.
package domain

import (
	"github.com/google/uuid"

	dErrors "poolpay/pkg/domain-errors"
)

type (
	UserID         uuid.UUID
	PoolID         uuid.UUID
	ContributionID uuid.UUID
)

const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return parsed, nil
}

// ParseUserID parses a user identifier from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user_id", s)
	return UserID(u), err
}

// ParsePoolID parses a pool identifier from external input.
func ParsePoolID(s string) (PoolID, error) {
	u, err := parseUUID("pool_id", s)
	return PoolID(u), err
}

// ParseContributionID parses a contribution identifier from external input.
func ParseContributionID(s string) (ContributionID, error) {
	u, err := parseUUID("contribution_id", s)
	return ContributionID(u), err
}

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id PoolID) String() string         { return uuid.UUID(id).String() }
func (id ContributionID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id PoolID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ContributionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewPoolID returns a fresh random pool ID.
func NewPoolID() PoolID { return PoolID(uuid.New()) }

// NewContributionID returns a fresh random contribution ID.
func NewContributionID() ContributionID { return ContributionID(uuid.New()) }
