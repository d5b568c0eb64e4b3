package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AccountTable is the SurrealDB table holding one document per account
const AccountTable = "account"

// AccountEmailIndex is the unique index on account.email
const AccountEmailIndex = "account_email_unique"

// accountIDLength is the length of the canonical hyphenated UUID form
const accountIDLength = 36

// ErrInvalidAccountID is returned when a string is not a canonical account ID
var ErrInvalidAccountID = errors.New("invalid account id")

// AccountID identifies an account. It is assigned by the store on create
// and never changes afterwards. The zero value means "not yet assigned".
type AccountID uuid.UUID

// NewAccountID generates a new time-ordered account ID
func NewAccountID() (AccountID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return AccountID{}, err
	}
	return AccountID(id), nil
}

// ParseAccountID parses the external string form of an account ID.
// Only the canonical 36-character form is accepted.
func ParseAccountID(s string) (AccountID, error) {
	if len(s) != accountIDLength {
		return AccountID{}, ErrInvalidAccountID
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return AccountID{}, ErrInvalidAccountID
	}
	return AccountID(id), nil
}

// String returns the canonical string form
func (id AccountID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether the ID has not been assigned
func (id AccountID) IsZero() bool {
	return id == AccountID{}
}

// MarshalText implements encoding.TextMarshaler
func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *AccountID) UnmarshalText(data []byte) error {
	parsed, err := ParseAccountID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Account represents a user account record
type Account struct {
	ID        AccountID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Hash      string    `json:"-"` // Never expose password hash
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Public returns a copy of the account without the password hash
func (a *Account) Public() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Hash = ""
	return &cp
}
