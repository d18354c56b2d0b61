// Package mongo stores notes in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aretw0/notebench/pkg/core"
)

// CollectionName is the collection holding the notes.
const CollectionName = "notes"

// Config holds the configuration for the MongoDB repository.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	Logger         *slog.Logger
}

// Repository implements core.Repository on top of a MongoDB collection.
type Repository struct {
	config     Config
	client     *mongo.Client
	collection *mongo.Collection
}

// document is the persisted form of a note.
type document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func toDocument(n core.Note) document {
	return document{
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (d document) toNote() core.Note {
	return core.Note{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// ParseID converts a hex string into an ObjectID, reporting core.ErrInvalidID when malformed.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", core.ErrInvalidID, id)
	}
	return oid, nil
}

// NewRepository creates a repository. No connection is made until Initialize.
func NewRepository(config Config) *Repository {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.Database == "" {
		config.Database = "notes"
	}
	return &Repository{config: config}
}

// Initialize connects to the server and verifies it is reachable.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.URI == "" {
		return fmt.Errorf("%w: mongo uri is empty", core.ErrStorageUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(r.config.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping mongo: %w", err)
	}

	r.client = client
	r.collection = client.Database(r.config.Database).Collection(CollectionName)

	if r.config.Logger != nil {
		r.config.Logger.Info("connected to mongo", "database", r.config.Database)
	}
	return nil
}

// Insert stores a note and returns it with the server-assigned ObjectID.
func (r *Repository) Insert(ctx context.Context, n core.Note) (core.Note, error) {
	if r.collection == nil {
		return core.Note{}, errNotConnected
	}

	doc := toDocument(n)
	doc.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return core.Note{}, fmt.Errorf("failed to insert note: %w", err)
	}
	return doc.toNote(), nil
}

// List returns every note in natural collection order.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	if r.collection == nil {
		return nil, errNotConnected
	}

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := []core.Note{}
	for cursor.Next(ctx) {
		var doc document
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode note: %w", err)
		}
		notes = append(notes, doc.toNote())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor failed: %w", err)
	}
	return notes, nil
}

// Get retrieves a note by its hex ObjectID.
func (r *Repository) Get(ctx context.Context, id string) (core.Note, error) {
	oid, err := ParseID(id)
	if err != nil {
		return core.Note{}, err
	}
	if r.collection == nil {
		return core.Note{}, errNotConnected
	}

	var doc document
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Note{}, core.ErrNotFound
	}
	if err != nil {
		return core.Note{}, fmt.Errorf("failed to find note %s: %w", id, err)
	}
	return doc.toNote(), nil
}

// Close disconnects the client.
func (r *Repository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "mongo"
}

var errNotConnected = errors.New("mongo repository is not initialized")
