package identity

import "time"

// Account statuses. Only active users may move money.
const (
	StatusActive    = "active"
	StatusPending   = "pending"
	StatusSuspended = "suspended"
)

// User represents a registered wallet owner.
type User struct {
	ID           string
	Email        string
	Phone        string
	FirstName    string
	LastName     string
	Status       string
	PasswordHash []byte
	CreatedAt    time.Time
}

// CanOperate reports whether the user's account status allows financial
// operations.
func (u User) CanOperate() bool {
	return u.Status == StatusActive
}

// DisplayName is the name used in transaction notifications.
func (u User) DisplayName() string {
	name := u.FirstName
	if name == "" {
		name = "Unknown"
	}
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
