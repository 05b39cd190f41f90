package domain

import "time"

// Account models a registered user. PasswordHash never leaves the process.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns a copy of the account with the password hash cleared.
func (a *Account) Public() *Account {
	if a == nil {
		return nil
	}
	out := *a
	out.PasswordHash = ""
	return &out
}

// Identity is the claim bundle carried by a verified token.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   *Account  `json:"user"`
}
