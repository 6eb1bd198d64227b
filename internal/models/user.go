package models

// User represents a registered account. The core consults users only to
// annotate obligations (registration status and contact info); registration
// and credential handling live outside this module.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Username is the canonical login name. Lookups are case-insensitive.
	Username string `json:"username"`

	// Phone is an optional contact number, normalized to digits and a
	// leading plus sign.
	Phone string `json:"phone,omitempty"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"createdAt"`
}
