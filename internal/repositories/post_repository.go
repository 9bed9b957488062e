package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPostNotFound is returned when an id does not resolve to a stored post.
// Ids that are not valid ObjectID hex cannot resolve either, so they get the
// same error instead of a format error of their own.
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetFeedPosts(ctx context.Context, viewerID uint, skip, limit int64) ([]models.Post, error)
	CountFeedPosts(ctx context.Context, viewerID uint) (int64, error)
	GetPostsByAuthor(ctx context.Context, authorID uint, includePrivate bool, skip, limit int64) ([]models.Post, error)
	CountPostsByAuthor(ctx context.Context, authorID uint, includePrivate bool) (int64, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// feedFilter matches what the viewer is allowed to see: every public post
// plus the viewer's own private ones.
func feedFilter(viewerID uint) bson.M {
	return bson.M{"$or": []bson.M{
		{"privacy": models.PrivacyPublic},
		{"author_id": viewerID},
	}}
}

func authorFilter(authorID uint, includePrivate bool) bson.M {
	filter := bson.M{"author_id": authorID}
	if !includePrivate {
		filter["privacy"] = models.PrivacyPublic
	}
	return filter
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetFeedPosts retrieves the posts visible to the viewer, newest first
func (r *MongoPostRepository) GetFeedPosts(ctx context.Context, viewerID uint, skip, limit int64) ([]models.Post, error) {
	return r.findPosts(ctx, feedFilter(viewerID), skip, limit)
}

// CountFeedPosts counts the posts visible to the viewer
func (r *MongoPostRepository) CountFeedPosts(ctx context.Context, viewerID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, feedFilter(viewerID))
}

// GetPostsByAuthor retrieves posts by a specific author, newest first.
// Private posts are included only when includePrivate is set.
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, includePrivate bool, skip, limit int64) ([]models.Post, error) {
	return r.findPosts(ctx, authorFilter(authorID, includePrivate), skip, limit)
}

// CountPostsByAuthor counts posts by a specific author
func (r *MongoPostRepository) CountPostsByAuthor(ctx context.Context, authorID uint, includePrivate bool) (int64, error) {
	return r.collection.CountDocuments(ctx, authorFilter(authorID, includePrivate))
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, error) {
	posts := []models.Post{}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost updates an existing post in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"content":    post.Content,
			"image":      post.Image,
			"privacy":    post.Privacy,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}
