package profile

import "time"

// Role is the dashboard-level access tier carried on a profile.
type Role string

const (
	// RoleAdmin manages the catalog and other users.
	RoleAdmin Role = "admin"
	// RoleOwner owns individual tools and their change requests.
	RoleOwner Role = "owner"
	// RoleObserver is the least-privilege tier; also the role synthesized
	// when an authenticated identity's profile cannot be resolved.
	RoleObserver Role = "observer"
)

// Record is the application user record, distinct from the identity
// backend's credential record. One record exists per identity id; it is
// created by the invitation process and only ever read here.
type Record struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               Role      `json:"role"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewObserver synthesizes a least-privilege record from raw identity claims.
// Used only when an authenticated sign-in cannot resolve its real profile for
// an unexpected reason; a definitively missing profile signs the user out
// instead.
func NewObserver(identityID, email string) *Record {
	now := time.Now()
	return &Record{
		ID:        identityID,
		Email:     email,
		Role:      RoleObserver,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
