package core

import "context"

// Repository defines the contract for storing and retrieving notes.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism (memory, filesystem, MongoDB).
type Repository interface {
	// Initialize ensures the underlying storage is ready (e.g. create directories, ping server).
	Initialize(ctx context.Context) error

	// Insert persists a new note and returns it with the store-assigned ID.
	Insert(ctx context.Context, n Note) (Note, error)

	// List returns all stored notes in store-native order.
	List(ctx context.Context) ([]Note, error)

	// Get retrieves a note by its ID.
	// Malformed ids yield ErrInvalidID, unknown ones ErrNotFound.
	Get(ctx context.Context, id string) (Note, error)
}

// Closer is implemented by repositories holding external resources (connections, watchers).
type Closer interface {
	Close(ctx context.Context) error
}
