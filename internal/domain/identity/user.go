package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Role determines what a user can do within their tenant
type Role string

const (
	RoleAdmin    Role = "admin"    // manages fairs, sees summaries
	RoleOperator Role = "operator" // records sales at the stand
)

// IsValid returns true if the role is one of the known values
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleOperator
}

// Password cost for bcrypt
const bcryptCost = 12

// Lockout policy for failed logins
const (
	maxFailedAttempts = 5
	lockoutDuration   = 15 * time.Minute
)

// User represents an operator or admin account within a tenant
type User struct {
	shared.TenantAggregateRoot
	Username       string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_user_tenant_name,priority:2"`
	Email          string     `gorm:"type:varchar(200)"`
	DisplayName    string     `gorm:"type:varchar(200)"`
	PasswordHash   string     `gorm:"type:varchar(100);not null"`
	Role           Role       `gorm:"type:varchar(20);not null;default:'operator'"`
	Status         UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt    *time.Time
	FailedAttempts int `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active user
func NewUser(tenantID uuid.UUID, username, password string, role Role) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Username:            strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:        passwordHash,
		Role:                role,
		Status:              UserStatusActive,
	}, nil
}

// VerifyPassword checks the password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// CanLogin reports whether the account accepts logins right now
func (u *User) CanLogin(now time.Time) bool {
	if u.Status == UserStatusDeactivated {
		return false
	}
	if u.Status == UserStatusLocked {
		if u.LockedUntil == nil || now.Before(*u.LockedUntil) {
			return false
		}
	}
	return true
}

// RecordFailedLogin counts a failed attempt and locks the account when
// the threshold is reached
func (u *User) RecordFailedLogin(now time.Time) {
	u.FailedAttempts++
	if u.FailedAttempts >= maxFailedAttempts {
		until := now.Add(lockoutDuration)
		u.Status = UserStatusLocked
		u.LockedUntil = &until
	}
	u.Touch()
}

// RecordSuccessfulLogin resets the failure counter and unlocks the account
func (u *User) RecordSuccessfulLogin(now time.Time) {
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Status = UserStatusActive
	u.LastLoginAt = &now
	u.Touch()
}

// ChangePassword replaces the password after validating the new one
func (u *User) ChangePassword(newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}

	return nil
}

// ValidatePassword enforces the password policy
func ValidatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
