package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aretw0/notebench/pkg/core"
)

// StatusError is a non-2xx reply from the notes API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// NotesClient manipulates notes on a single target.
type NotesClient struct {
	target    string
	transport Transport
}

// NewNotesClient creates a client for target. A nil transport selects the fiber transport.
func NewNotesClient(target string, transport Transport) *NotesClient {
	if transport == nil {
		transport = NewFiberTransport()
	}
	return &NotesClient{target: target, transport: transport}
}

// Create posts a new note.
func (c *NotesClient) Create(ctx context.Context, in core.NoteInput) (core.Note, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return core.Note{}, err
	}
	var n core.Note
	err = c.call(ctx, Request{Method: http.MethodPost, URL: join(c.target, "/notes"), Body: body}, &n)
	return n, err
}

// List fetches every note.
func (c *NotesClient) List(ctx context.Context) ([]core.Note, error) {
	var notes []core.Note
	err := c.call(ctx, Request{Method: http.MethodGet, URL: join(c.target, "/notes")}, &notes)
	return notes, err
}

// Get fetches one note by id.
func (c *NotesClient) Get(ctx context.Context, id string) (core.Note, error) {
	var n core.Note
	err := c.call(ctx, Request{Method: http.MethodGet, URL: join(c.target, "/notes/"+url.PathEscape(id))}, &n)
	return n, err
}

func (c *NotesClient) call(ctx context.Context, req Request, out any) error {
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return &TransportError{Target: c.target, Err: err}
	}
	if !resp.OK() {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(resp.Body, &body)
		return &StatusError{Status: resp.Status, Message: body.Error}
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
