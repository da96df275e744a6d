package document

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/kochabx/docvault/core/crypto/envelope"
	"github.com/kochabx/docvault/core/tag"
	"github.com/kochabx/docvault/core/validator"
	"github.com/kochabx/docvault/errors"
	"github.com/kochabx/docvault/log"
)

// Service stores documents encrypted at rest. Bodies are sealed by the
// codec and kept in a BlobStore; the wrapped key and tag stay with the
// record in the Repository.
type Service struct {
	codec    Codec
	blobs    BlobStore
	repo     Repository
	events   ActivityPublisher
	recorder Recorder
	logger   *log.Logger
	config   Config
	now      func() time.Time

	pool *ants.Pool
}

// NewService returns a Service. Close releases its worker pool.
func NewService(codec Codec, blobs BlobStore, repo Repository, opts ...Option) (*Service, error) {
	if codec == nil || blobs == nil || repo == nil {
		return nil, fmt.Errorf("document: codec, blob store and repository are required")
	}

	s := &Service{
		codec:    codec,
		blobs:    blobs,
		repo:     repo,
		events:   NoopPublisher,
		recorder: noopRecorder{},
		logger:   log.G,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := tag.ApplyDefaults(&s.config); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := validator.Validate.Struct(&s.config); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(s.config.VerifyWorkers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create verify pool: %w", err)
	}
	s.pool = pool

	return s, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.config
}

// Close releases the verify worker pool.
func (s *Service) Close() error {
	s.pool.Release()
	return nil
}

// Upload encrypts and stores a new document.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Record, error) {
	if err := validator.Validate.StructCtx(ctx, &in); err != nil {
		return nil, ErrInvalidInput.WithCause(err)
	}
	if int64(len(in.Data)) > s.config.MaxSize {
		return nil, ErrTooLarge.WithMetadata(map[string]string{"max_size": fmt.Sprint(s.config.MaxSize)})
	}
	mimeType, ok := s.config.allowed(in.MimeType)
	if !ok {
		return nil, ErrUnsupportedType.WithMetadata(map[string]string{"mime_type": in.MimeType})
	}

	now := s.now().UTC()
	r := &Record{
		ID:               uuid.NewString(),
		Owner:            in.Owner,
		OriginalFilename: in.Filename,
		MimeType:         mimeType,
		Size:             int64(len(in.Data)),
		ExpiryDate:       in.ExpiryDate,
		BoundAD:          s.config.BindAssociatedData,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.StoredFilename = fmt.Sprintf("%d_%s.bin", now.UnixMilli(), r.ID)

	start := time.Now()
	payload, err := s.codec.EncryptWithAD(ctx, in.Data, associatedData(r))
	s.recorder.ObserveEnvelope("encrypt", time.Since(start), envelope.Kind(err))
	if err != nil {
		s.logger.Error().Err(err).Str("kind", envelope.Kind(err)).Msg("document encryption failed")
		return nil, ErrUploadFailed
	}
	r.WrappedKey = payload.WrappedKey
	r.AuthTag = payload.AuthTag

	if err := s.blobs.Put(ctx, r.StoredFilename, payload.Ciphertext); err != nil {
		s.logger.Error().Err(err).Str("stored_filename", r.StoredFilename).Msg("failed to store ciphertext")
		return nil, ErrUploadFailed
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.logger.Error().Err(err).Str("document_id", r.ID).Msg("failed to create document record")
		if derr := s.blobs.Delete(ctx, r.StoredFilename); derr != nil {
			s.logger.Warn().Err(derr).Str("stored_filename", r.StoredFilename).Msg("failed to remove orphaned blob")
		}
		return nil, ErrUploadFailed
	}

	s.recorder.IncDocument("upload")
	s.publish(ctx, r.Owner, "Uploaded "+r.OriginalFilename)
	return r, nil
}

// List returns the owner's documents, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]*Record, error) {
	if owner == "" {
		return nil, ErrInvalidInput
	}
	records, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, errors.Internal("failed to list documents").WithCause(err)
	}
	s.recorder.IncDocument("list")
	return records, nil
}

// Download returns the decrypted document. Missing and foreign documents
// both yield ErrNotFound; every storage or crypto failure yields
// ErrUnavailable.
func (s *Service) Download(ctx context.Context, owner, id string) (*Download, error) {
	r, err := s.find(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	data, kind, err := s.open(ctx, r)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("document_id", r.ID).
			Str("kind", kind).
			Msg("document unavailable")
		return nil, ErrUnavailable
	}

	s.recorder.IncDocument("download")
	return &Download{Record: r, Data: data}, nil
}

// Delete removes the record and, best effort, its ciphertext.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	r, err := s.find(ctx, owner, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteOwned(ctx, r.ID, owner); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Internal("failed to delete document").WithCause(err)
	}
	if err := s.blobs.Delete(ctx, r.StoredFilename); err != nil && !errors.Is(err, ErrBlobNotFound) {
		s.logger.Warn().Err(err).Str("stored_filename", r.StoredFilename).Msg("failed to remove blob")
	}

	s.recorder.IncDocument("delete")
	s.publish(ctx, owner, "Deleted "+r.OriginalFilename)
	return nil
}

// Verify decrypts every document of owner on the worker pool and reports
// the ones that fail.
func (s *Service) Verify(ctx context.Context, owner string) (*VerifyReport, error) {
	records, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{Total: len(records), Failed: []VerifyFailure{}}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, r := range records {
		wg.Add(1)
		task := func() {
			defer wg.Done()

			_, kind, err := s.open(ctx, r)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn().Err(err).Str("document_id", r.ID).Str("kind", kind).Msg("document failed verification")
				report.Failed = append(report.Failed, VerifyFailure{ID: r.ID, OriginalFilename: r.OriginalFilename})
				return
			}
			report.Verified++
		}
		if err := s.pool.Submit(task); err != nil {
			wg.Done()
			wg.Wait()
			return nil, errors.ServiceUnavailable("verification pool unavailable").WithCause(err)
		}
	}
	wg.Wait()

	s.recorder.IncDocument("verify")
	return report, nil
}

func (s *Service) find(ctx context.Context, owner, id string) (*Record, error) {
	if owner == "" || id == "" {
		return nil, ErrInvalidInput
	}
	r, err := s.repo.FindOwned(ctx, id, owner)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Internal("failed to load document").WithCause(err)
	}
	return r, nil
}

// open fetches and decrypts the body of r. kind classifies a failure.
func (s *Service) open(ctx context.Context, r *Record) ([]byte, string, error) {
	ciphertext, err := s.blobs.Get(ctx, r.StoredFilename)
	if err != nil {
		kind := "blob_read"
		if errors.Is(err, ErrBlobNotFound) {
			kind = "blob_missing"
		}
		s.recorder.ObserveEnvelope("decrypt", 0, kind)
		return nil, kind, err
	}

	start := time.Now()
	data, err := s.codec.DecryptWithAD(ctx, ciphertext, r.AuthTag, r.WrappedKey, associatedData(r))
	kind := envelope.Kind(err)
	s.recorder.ObserveEnvelope("decrypt", time.Since(start), kind)
	return data, kind, err
}

func (s *Service) publish(ctx context.Context, owner, message string) {
	a := Activity{
		Owner:     owner,
		Type:      ActivityType,
		Message:   message,
		Timestamp: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, a); err != nil {
		s.logger.Warn().Err(err).Str("owner", owner).Msg("failed to publish activity")
	}
}

// associatedData binds the record ID into the tag when enabled for r.
func associatedData(r *Record) []byte {
	if !r.BoundAD {
		return nil
	}
	return []byte(r.ID)
}
