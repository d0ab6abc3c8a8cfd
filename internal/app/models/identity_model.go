package models

import "github.com/google/uuid"

// IdentityUser is the external identity service's view of a user.
type IdentityUser struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
}

// HostGrant reports whether a user holds host authority for an org.
type HostGrant struct {
	UserID  uuid.UUID `json:"user_id"`
	OrgID   uuid.UUID `json:"org_id"`
	CanHost bool      `json:"can_host"`
}
