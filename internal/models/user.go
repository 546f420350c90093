package models

// User is an operator account allowed to drive the dryer. The ID is carried in
// issued tokens and logged as the acting operator on control requests.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // bcrypt, never serialized
}
