package nugget_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"nuggets/internal/db"
	"nuggets/internal/media"
	"nuggets/internal/nugget"
)

type RepositorySuite struct {
	suite.Suite

	ctx    context.Context
	client *mongo.Client
	db     *mongo.Database

	repo nugget.Repository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	mongoURI := "mongodb://localhost:27017"
	mongoDBName := "test_nuggetsdb"

	client, err := db.ConnectMongo(s.ctx, mongoURI)
	s.Require().NoError(err, "failed to connect to mongo")
	s.client = client
	s.db = client.Database(mongoDBName)
}

func (s *RepositorySuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Disconnect(s.ctx)
	}
}

func (s *RepositorySuite) SetupTest() {
	// ensure a fresh DB before each test
	_ = s.db.Drop(s.ctx)

	repo, err := nugget.NewMongoRepository(s.db, nil)
	s.Require().NoError(err, "failed to create repository")
	s.repo = repo
}

func payload() *nugget.NormalizedArticleInput {
	return &nugget.NormalizedArticleInput{
		Title:      "A Nugget",
		Content:    "Some content worth keeping.",
		Excerpt:    "Some content worth keeping.",
		ReadTime:   1,
		Categories: []string{"Tech"},
		Tags:       []string{"Tech"},
		Visibility: nugget.VisibilityPublic,
		Images:     []string{"https://example.com/a.jpg"},
		Media: &media.Descriptor{
			Type: media.TypeLink,
			URL:  "https://example.com/article",
		},
		SourceType: nugget.SourceTypeLink,
	}
}

func (s *RepositorySuite) TestCreateAndFind() {
	created, err := s.repo.Create(s.ctx, payload())
	s.Require().NoError(err)
	s.Require().False(created.ID.IsZero())
	s.False(created.CreatedAt.IsZero())

	found, err := s.repo.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("A Nugget", found.Title)
	s.Equal([]string{"https://example.com/a.jpg"}, found.Images)

	// The resolved primary media lands in both current and legacy fields.
	s.Require().NotNil(found.PrimaryMedia)
	s.Require().NotNil(found.Media)
	s.Equal("https://example.com/article", found.PrimaryMedia.URL)
	s.Equal("https://example.com/article", found.Media.URL)
}

func (s *RepositorySuite) TestCreateHonorsCustomCreatedAt() {
	p := payload()
	p.CustomCreatedAt = "2020-01-15T10:30:00Z"

	created, err := s.repo.Create(s.ctx, p)
	s.Require().NoError(err)
	s.Equal(2020, created.CreatedAt.UTC().Year())
}

func (s *RepositorySuite) TestUpdate() {
	created, err := s.repo.Create(s.ctx, payload())
	s.Require().NoError(err)

	p := payload()
	p.Title = "Updated Nugget"
	p.Images = []string{"https://example.com/a.jpg", "https://example.com/b.jpg"}

	updated, err := s.repo.Update(s.ctx, created.ID, p)
	s.Require().NoError(err)
	s.Equal("Updated Nugget", updated.Title)
	s.Len(updated.Images, 2)
	s.Equal(created.ID, updated.ID)
}

func (s *RepositorySuite) TestUpdateMissingNugget() {
	_, err := s.repo.Update(s.ctx, primitive.NewObjectID(), payload())
	s.Require().ErrorIs(err, nugget.ErrNotFound)
}

func (s *RepositorySuite) TestFindMissingNugget() {
	_, err := s.repo.FindByID(s.ctx, primitive.NewObjectID())
	s.Require().ErrorIs(err, nugget.ErrNotFound)
}
