package user

import (
	"errors"
	"time"
)

// ErrUserNotFound indicates the user does not exist.
var ErrUserNotFound = errors.New("user not found")

// User is a registered account. Accounts are created on first Google
// login; GoogleID references the identity provider profile.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	GoogleID  string    `json:"-" bson:"googleId"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Avatar    string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	XP        int       `json:"xp" bson:"xp"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

// AddXP applies an XP delta, flooring the result at zero.
func (u *User) AddXP(delta int) {
	u.XP += delta
	if u.XP < 0 {
		u.XP = 0
	}
}

// Claims are the authenticated identity attached to a request once the
// session token has been validated.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
