package domain

import "time"

// ContactMessage is a single contact-form submission. Messages are
// insert-only; they are read back by the admin dashboard and never mutated.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
