package document

import (
	"context"
	"time"

	"github.com/kochabx/docvault/core/crypto/envelope"
)

// Codec seals and opens document bodies. *envelope.Codec implements it.
type Codec interface {
	EncryptWithAD(ctx context.Context, plaintext, ad []byte) (*envelope.Payload, error)
	DecryptWithAD(ctx context.Context, ciphertext, authTag, wrappedKey, ad []byte) ([]byte, error)
}

// BlobStore keeps ciphertext bodies under generated names.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) error
	// Get returns an error matching ErrBlobNotFound for a missing object.
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// Repository keeps document records. Lookups are always scoped to an owner.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	// FindOwned returns ErrNotFound unless id exists and belongs to owner.
	FindOwned(ctx context.Context, id, owner string) (*Record, error)
	// ListByOwner returns the owner's records, newest first.
	ListByOwner(ctx context.Context, owner string) ([]*Record, error)
	// DeleteOwned returns ErrNotFound when nothing was deleted.
	DeleteOwned(ctx context.Context, id, owner string) error
}

// ActivityPublisher emits audit events.
type ActivityPublisher interface {
	Publish(ctx context.Context, a Activity) error
}

// Recorder receives operational measurements.
type Recorder interface {
	ObserveEnvelope(op string, elapsed time.Duration, kind string)
	IncDocument(op string)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Activity) error { return nil }

// NoopPublisher discards every activity.
var NoopPublisher ActivityPublisher = noopPublisher{}

type noopRecorder struct{}

func (noopRecorder) ObserveEnvelope(string, time.Duration, string) {}
func (noopRecorder) IncDocument(string)                            {}
