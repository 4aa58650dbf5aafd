// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// WHY json:"-" ON PasswordHash?
// The hash must never leave the server. Tagging the field with "-" tells
// encoding/json to skip it entirely, so even a careless handler that
// serializes the whole struct cannot leak it. The plaintext password is
// never stored at all — only the bcrypt hash.
//
// Username is unique and immutable after signup; Name is the display name
// and can be changed via the profile update endpoint.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the subset of User safe to show to any authenticated caller
// (the /get_user/{id} endpoint). No timestamps, no credential material.
type PublicUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Public returns the externally visible view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Username: u.Username}
}
