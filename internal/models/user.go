package models

// User represents a registered user
type User struct {
	UUID           string `json:"uuid"`
	Name           string `json:"name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	PasswordHash   string `json:"-"` // Not serialized
	DocumentNumber string `json:"document_number"`
	ImageURL       string `json:"image_url,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
