package core

import "time"

// Defaults applied to notes created without a title or content.
const (
	DefaultTitle   = "Untitled Note"
	DefaultContent = "No Content"
)

// Note is the central entity of the domain.
// Notes are append-only: once stored they are never updated or removed.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteInput is the payload accepted when creating a note.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
