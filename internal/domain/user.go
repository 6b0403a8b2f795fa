package domain

import "time"

// User is serialized without its password hash or reset token.
type User struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Password         string     `json:"-"`
	FirstName        string     `json:"first_name,omitempty"`
	LastName         string     `json:"last_name,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Address          string     `json:"address,omitempty"`
	City             string     `json:"city,omitempty"`
	State            string     `json:"state,omitempty"`
	ZipCode          string     `json:"zip_code,omitempty"`
	Country          string     `json:"country,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	IsVerified       bool       `json:"is_verified"`
	ResetToken       string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.LastLogin = cloneTime(u.LastLogin)
	c.ResetTokenExpiry = cloneTime(u.ResetTokenExpiry)
	return &c
}
