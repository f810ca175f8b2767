// Package storage defines the persistence contracts used by the auth and
// passenger packages.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when creating a user whose email already
	// exists. It is derived from the unique constraint, never from a
	// preliminary lookup.
	ErrEmailTaken = errors.New("email already registered")
)

// Roles a user may hold.
const (
	RolePassenger = "passenger"
	RoleAdmin     = "admin"
)

// User is a stored account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore persists accounts keyed by a unique email.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// NotificationReadStore remembers which notifications a user has read.
type NotificationReadStore interface {
	MarkNotificationsRead(ctx context.Context, userID string, ids []string) error
	ReadNotificationIDs(ctx context.Context, userID string) (map[string]bool, error)
}

// NormalizeEmail trims and lowercases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
