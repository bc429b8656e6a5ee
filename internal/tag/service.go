package tag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrEmptyName = errors.New("tag name is empty after normalization")

// Options carries optional overrides for tag creation/reactivation.
type Options struct {
	Status     Status
	IsOfficial *bool
}

// Service resolves free-text tag names to a single canonical persisted
// identity per name, insensitive to casing and internal whitespace.
type Service struct {
	col    *mongo.Collection
	logger *log.Logger
}

func NewService(db *mongo.Database, logger *log.Logger) (*Service, error) {
	svc := &Service{
		col:    db.Collection("tags"),
		logger: logger,
	}
	if err := svc.ensureIndexes(context.Background()); err != nil {
		return nil, err
	}
	return svc, nil
}

// ensureIndexes makes canonicalName the unique identity key. The unique
// index is what turns a concurrent-create race into a recoverable
// duplicate-key signal instead of two documents.
func (s *Service) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "canonicalName", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}
	_, err := s.col.Indexes().CreateMany(ctx, indexes)

	if err != nil && s.logger != nil {
		s.logger.Printf("failed to create tag indexes: %v", err)
	}
	return err
}

// NormalizeName trims and collapses internal whitespace; the lowercased form
// of the result is the canonical key.
func NormalizeName(name string) (rawName, canonicalName string) {
	rawName = strings.Join(strings.Fields(name), " ")
	return rawName, strings.ToLower(rawName)
}

// CreateOrResolve returns the single tag document a name resolves to,
// creating or reactivating as needed. It never surfaces an "already exists"
// conflict: when a concurrent caller wins the insert race, the winner's
// document is re-read and returned.
func (s *Service) CreateOrResolve(ctx context.Context, name string, opts Options) (*Tag, error) {
	rawName, canonicalName := NormalizeName(name)
	if canonicalName == "" {
		return nil, fmt.Errorf("%w: %q", ErrEmptyName, name)
	}

	existing, err := s.findByCanonicalName(ctx, canonicalName)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if existing != nil {
		return s.reconcileExisting(ctx, existing, rawName, opts)
	}

	created, err := s.insert(ctx, rawName, canonicalName, opts)
	if err == nil {
		return created, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, err
	}

	// Lost the insert race. The unique-constraint violation is the expected
	// signal here, not an exceptional one: re-read once and return the winner.
	winner, err := s.findByCanonicalName(ctx, canonicalName)
	if err != nil {
		return nil, err
	}
	return s.reconcileExisting(ctx, winner, rawName, opts)
}

// Results maps canonical names to resolved tags for a batch call.
type Results struct {
	Tags   map[string]*Tag
	Errors map[string]error
}

// CreateOrResolveMany resolves many names concurrently, collecting per-name
// failures without aborting the batch.
func (s *Service) CreateOrResolveMany(ctx context.Context, names []string, opts Options) Results {
	results := Results{
		Tags:   make(map[string]*Tag, len(names)),
		Errors: make(map[string]error),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			t, err := s.CreateOrResolve(ctx, name, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results.Errors[name] = err
				return
			}
			results.Tags[t.CanonicalName] = t
		}(name)
	}
	wg.Wait()

	return results
}

func (s *Service) findByCanonicalName(ctx context.Context, canonicalName string) (*Tag, error) {
	res := s.col.FindOne(ctx, bson.M{"canonicalName": canonicalName})
	if res.Err() != nil {
		return nil, res.Err()
	}
	t := &Tag{}
	if err := res.Decode(t); err != nil {
		return nil, err
	}
	return t, nil
}

// reconcileExisting brings an already-persisted tag in line with the caller's
// request: inactive tags are reactivated with the requested (or default)
// status, and rawName tracks the latest casing either way.
func (s *Service) reconcileExisting(ctx context.Context, existing *Tag, rawName string, opts Options) (*Tag, error) {
	set := bson.M{}

	if existing.Status == StatusInactive {
		status := opts.Status
		if status == "" {
			status = StatusActive
		}
		set["status"] = status
		set["rawName"] = rawName
		if s.logger != nil {
			s.logger.Printf("reactivating tag %q", existing.CanonicalName)
		}
	} else if existing.RawName != rawName {
		set["rawName"] = rawName
	}

	if len(set) == 0 {
		return existing, nil
	}
	set["updatedAt"] = time.Now()

	res := s.col.FindOneAndUpdate(
		ctx,
		bson.M{"canonicalName": existing.CanonicalName},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if res.Err() != nil {
		return nil, res.Err()
	}

	updated := &Tag{}
	if err := res.Decode(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) insert(ctx context.Context, rawName, canonicalName string, opts Options) (*Tag, error) {
	now := time.Now()

	status := opts.Status
	if status == "" {
		status = StatusActive
	}

	t := &Tag{
		RawName:       rawName,
		CanonicalName: canonicalName,
		Status:        status,
		UsageCount:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if opts.IsOfficial != nil {
		t.IsOfficial = *opts.IsOfficial
	}

	res, err := s.col.InsertOne(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = res.InsertedID.(primitive.ObjectID)

	if s.logger != nil {
		s.logger.Printf("created tag %q", canonicalName)
	}
	return t, nil
}
