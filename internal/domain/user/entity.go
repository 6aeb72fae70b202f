package user

import "time"

// User represents a user entity in the system.
type User struct {
	ID        int64     // ID is the unique identifier assigned by the store
	Name      string    // Name is the full name of the user
	Email     string    // Email is the unique email address of the user
	Age       int       // Age is the non-negative age in years
	CreatedAt time.Time // CreatedAt is set by the store on insert
	UpdatedAt time.Time // UpdatedAt is set by the store on every write
}
