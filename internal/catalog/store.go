package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/okhowto/video-catalog-go/internal/blob"
)

const (
	// DocumentKey is the blob key the whole catalog lives under.
	DocumentKey = "videos.json"

	documentContentType = "application/json; charset=utf-8"

	// deleteConflictRetries is how many times a delete re-applies its
	// mutation against a freshly read document after an ETag conflict.
	deleteConflictRetries = 1
)

// WriteResult reports a successful catalog write.
type WriteResult struct {
	Mode    string
	Count   int
	VimeoID string
}

// Store maintains the catalog document through read-modify-write cycles
// against the blob store. It holds no state between calls; concurrency
// safety across invocations comes from the blob store's ETag precondition.
type Store struct {
	blobs  blob.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewStore creates a Store on top of the given blob store.
func NewStore(blobs blob.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		blobs:  blobs,
		logger: logger,
		now:    time.Now,
	}
}

// List returns the catalog in feed order: updatedAt descending, records
// without updatedAt last. The feed must never fail visibly, so any read
// problem degrades to an empty list.
func (s *Store) List(ctx context.Context) []Video {
	videos, _, err := s.load(ctx)
	if err != nil {
		s.logger.Error("failed to load catalog, serving empty feed", zap.Error(err))
		return []Video{}
	}

	sortByUpdatedAt(videos)
	return videos
}

// Upsert validates and writes a single record, keyed by vimeoId. An existing
// record with the same vimeoId is merged in place; otherwise the record is
// appended.
func (s *Store) Upsert(ctx context.Context, payload map[string]any) (*WriteResult, error) {
	record := Normalize(payload)
	if err := Validate(record); err != nil {
		return nil, err
	}

	videos, _, err := s.load(ctx)
	if err != nil {
		return nil, WrapError(err, "load catalog")
	}

	now := s.now().UnixMilli()

	found := false
	for i := range videos {
		if videos[i].VimeoID == record.VimeoID {
			videos[i] = merge(videos[i], record, now)
			found = true
			break
		}
	}
	if !found {
		record.CreatedAt = now
		record.UpdatedAt = now
		videos = append(videos, record)
	}

	sortByUpdatedAt(videos)

	if err := s.persist(ctx, videos, ""); err != nil {
		return nil, err
	}

	s.logger.Info("catalog record upserted",
		zap.String("vimeoId", record.VimeoID),
		zap.Int("count", len(videos)),
		zap.Bool("replaced", found),
	)

	return &WriteResult{Mode: "upsert", Count: len(videos), VimeoID: record.VimeoID}, nil
}

// ReplaceAll swaps the entire document for the given payloads. Every element
// is normalized and validated; a single bad element rejects the whole batch
// so malformed records cannot slip into the catalog through the bulk path.
func (s *Store) ReplaceAll(ctx context.Context, payloads []map[string]any) (*WriteResult, error) {
	now := s.now().UnixMilli()

	videos := make([]Video, 0, len(payloads))
	for i, payload := range payloads {
		record := Normalize(payload)
		if err := Validate(record); err != nil {
			return nil, &ItemError{Index: i, Err: err}
		}

		if record.CreatedAt == 0 {
			record.CreatedAt = now
		}
		record.UpdatedAt = now
		videos = append(videos, record)
	}

	sortByUpdatedAt(videos)

	if err := s.persist(ctx, videos, ""); err != nil {
		return nil, err
	}

	s.logger.Info("catalog replaced", zap.Int("count", len(videos)))

	return &WriteResult{Mode: "replaceAll", Count: len(videos)}, nil
}

// Delete removes the record with the exact id and returns it. The write
// carries the document's ETag as a precondition; on a conflict the whole
// mutation is re-applied against a freshly read document, once.
func (s *Store) Delete(ctx context.Context, id string) (*Video, error) {
	for attempt := 0; ; attempt++ {
		videos, etag, err := s.load(ctx)
		if err != nil {
			return nil, WrapError(err, "load catalog")
		}

		remaining, removed := removeByID(videos, id)
		if removed == nil {
			return nil, fmt.Errorf("%w: id %q", ErrNotFound, id)
		}

		sortByUpdatedAt(remaining)

		err = s.persist(ctx, remaining, etag)
		if err == nil {
			s.logger.Info("catalog record deleted",
				zap.String("id", id),
				zap.Int("count", len(remaining)),
			)
			return removed, nil
		}

		if !IsConflict(err) || attempt >= deleteConflictRetries {
			return nil, err
		}

		s.logger.Warn("catalog write conflict, retrying against fresh document",
			zap.String("id", id),
			zap.Int("attempt", attempt+1),
		)
	}
}

// load fetches and decodes the document. An absent key or a malformed
// document is an empty catalog, never an error.
func (s *Store) load(ctx context.Context) ([]Video, string, error) {
	data, etag, err := s.blobs.Get(ctx, DocumentKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return []Video{}, "", nil
		}
		return nil, "", err
	}

	var videos []Video
	if err := json.Unmarshal(data, &videos); err != nil {
		s.logger.Warn("catalog document is not a JSON array, treating as empty",
			zap.Error(err),
		)
		return []Video{}, etag, nil
	}
	if videos == nil {
		// A stored "null" decodes without error into a nil slice.
		return []Video{}, etag, nil
	}

	return videos, etag, nil
}

func (s *Store) persist(ctx context.Context, videos []Video, ifMatch string) error {
	data, err := json.Marshal(videos)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	_, err = s.blobs.Set(ctx, DocumentKey, data, blob.SetOptions{
		ContentType: documentContentType,
		IfMatch:     ifMatch,
	})
	return WrapError(err, "persist catalog")
}

func sortByUpdatedAt(videos []Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].UpdatedAt > videos[j].UpdatedAt
	})
}

func removeByID(videos []Video, id string) ([]Video, *Video) {
	for i := range videos {
		if videos[i].ID == id {
			removed := videos[i]
			return append(videos[:i:i], videos[i+1:]...), &removed
		}
	}
	return videos, nil
}
