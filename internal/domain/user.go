package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole is the account-level role carried in the bearer token.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// User is an account. PasswordHash never leaves the service layer.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// NormalizeEmail lower-cases and trims an address and checks that it parses.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", Invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", Invalid("email", "email is not a valid address")
	}
	return email, nil
}

// UserPatch is an admin edit of an account. Nil fields are left unchanged.
type UserPatch struct {
	Name *string
	Role *UserRole
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// NormalizeName trims a display name and rejects a blank one.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", Invalid("name", "name is required")
	}
	return name, nil
}

// CheckPasswordLength rejects passwords shorter than MinPasswordLength.
// field names the request field the password came from.
func CheckPasswordLength(field, password string) error {
	if len(password) < MinPasswordLength {
		return Invalid(field, fmt.Sprintf("%s must be at least %d characters", field, MinPasswordLength))
	}
	return nil
}

// Apply merges p into u.
func (p UserPatch) Apply(u *User) error {
	if p.Name != nil {
		name, err := NormalizeName(*p.Name)
		if err != nil {
			return err
		}
		u.Name = name
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return Invalid("role", fmt.Sprintf("unknown role %q", *p.Role))
		}
		u.Role = *p.Role
	}
	return nil
}

// AuditAction names a booking event recorded in the activity log.
type AuditAction string

const (
	AuditBookTrip     AuditAction = "book-trip"
	AuditBookFlight   AuditAction = "book-flight"
	AuditBookHotel    AuditAction = "book-hotel"
	AuditBookActivity AuditAction = "book-activity"
)

// AuditEntry is one row of the append-only activity log.
// UserEmail is filled in by reporting queries only.
type AuditEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	UserEmail string
	Action    AuditAction
	Details   string
	CreatedAt time.Time
}
