package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserKind string

const (
	UserKindLocal     UserKind = "local"
	UserKindFederated UserKind = "federated"
)

func (k UserKind) IsValid() bool {
	return k == UserKindLocal || k == UserKindFederated
}

// User is an identity record. IsAdmin is independent of Kind and only ever
// changes through an explicit admin action; it is never derived from the
// identity provider.
type User struct {
	ID        uuid.UUID `json:"id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	Kind      UserKind  `json:"kind" db:"kind"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Subject   *string   `json:"-" db:"subject"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CanActOn reports whether the user may edit or delete content authored by
// authorID: the author themselves, or any admin.
func (u *User) CanActOn(authorID uuid.UUID) bool {
	return u.IsAdmin || u.ID == authorID
}

type CreateUserInput struct {
	Username string   `json:"username"`
	Kind     UserKind `json:"kind"`
	Email    *string  `json:"email,omitempty"`
	Subject  *string  `json:"subject,omitempty"`
}
