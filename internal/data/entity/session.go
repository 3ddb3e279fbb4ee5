package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleCustomer   = "customer"
	RoleInstructor = "instructor"
)

// Session is an opaque bearer token issued to a marketplace user. Login and
// registration live outside this service; sessions are assumed provisioned.
type Session struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	Token     uuid.UUID  `db:"token"`
	Role      string     `db:"role"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}
