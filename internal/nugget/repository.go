package nugget

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nuggets/internal/media"
)

var ErrNotFound = errors.New("nugget not found")

// Repository persists normalized articles.
type Repository interface {
	Create(ctx context.Context, payload *NormalizedArticleInput) (*Article, error)
	Update(ctx context.Context, id primitive.ObjectID, payload *NormalizedArticleInput) (*Article, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Article, error)
}

type mongoRepository struct {
	col    *mongo.Collection
	logger *log.Logger
}

func NewMongoRepository(db *mongo.Database, logger *log.Logger) (Repository, error) {
	repo := &mongoRepository{
		col:    db.Collection("articles"),
		logger: logger,
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *mongoRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "visibility", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)

	if err != nil && r.logger != nil {
		r.logger.Printf("failed to create indexes: %v", err)
	}
	return err
}

// toDocument maps the pipeline's output onto the persisted document shape.
// Deduplicated images land in images[], the resolved primary media in both
// media (legacy readers) and primaryMedia.
func toDocument(payload *NormalizedArticleInput, now time.Time) *Article {
	createdAt := now
	if payload.CustomCreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, payload.CustomCreatedAt); err == nil {
			createdAt = t
		}
	}

	return &Article{
		Title:      payload.Title,
		Content:    payload.Content,
		Excerpt:    payload.Excerpt,
		ReadTime:   payload.ReadTime,
		Categories: payload.Categories,
		Tags:       payload.Tags,
		Visibility: payload.Visibility,
		Article: media.Article{
			PrimaryMedia:    payload.Media,
			SupportingMedia: payload.SupportingMedia,
			Media:           payload.Media,
			Images:          payload.Images,
		},
		MediaIDs:   payload.MediaIDs,
		Documents:  payload.Documents,
		SourceType: payload.SourceType,
		CreatedAt:  createdAt,
		ModifiedAt: now,
	}
}

func (r *mongoRepository) Create(ctx context.Context, payload *NormalizedArticleInput) (*Article, error) {
	doc := toDocument(payload, time.Now())

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)

	if r.logger != nil {
		r.logger.Printf("created nugget %s (%s)", doc.ID.Hex(), doc.SourceType)
	}
	return doc, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, payload *NormalizedArticleInput) (*Article, error) {
	now := time.Now()
	doc := toDocument(payload, now)

	set := bson.M{
		"title":           doc.Title,
		"content":         doc.Content,
		"excerpt":         doc.Excerpt,
		"readTime":        doc.ReadTime,
		"categories":      doc.Categories,
		"tags":            doc.Tags,
		"visibility":      doc.Visibility,
		"primaryMedia":    doc.PrimaryMedia,
		"supportingMedia": doc.SupportingMedia,
		"media":           doc.Media,
		"images":          doc.Images,
		"mediaIds":        doc.MediaIDs,
		"documents":       doc.Documents,
		"source_type":     doc.SourceType,
		"modifiedAt":      now,
	}
	if payload.CustomCreatedAt != "" {
		set["createdAt"] = doc.CreatedAt
	}

	res := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if errors.Is(res.Err(), mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if res.Err() != nil {
		return nil, res.Err()
	}

	updated := &Article{}
	if err := res.Decode(updated); err != nil {
		return nil, err
	}

	if r.logger != nil {
		r.logger.Printf("updated nugget %s", id.Hex())
	}
	return updated, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Article, error) {
	res := r.col.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(res.Err(), mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if res.Err() != nil {
		return nil, res.Err()
	}

	a := &Article{}
	if err := res.Decode(a); err != nil {
		return nil, err
	}
	return a, nil
}
