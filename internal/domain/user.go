package domain

import "time"

// User is a back-office account. PasswordHash is never exposed on the wire.
type User struct {
	UserID       int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
}

// DisplayName prefers the first name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

func (u *User) Validate() error {
	fe := FieldErrors{}
	requireText(fe, "username", u.Username, 150)
	requireText(fe, "email", u.Email, 254)
	validEmail(fe, "email", u.Email)
	checkLength(fe, "first_name", u.FirstName, 150)
	checkLength(fe, "last_name", u.LastName, 150)
	return fe.Err()
}
