package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"github.com/kamruz-zzaman/applify-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockPostRepository is an in-memory PostRepository for handler tests. A
// pre-set CreatedAt survives CreatePost so tests can seed posts with chosen
// timestamps.
type MockPostRepository struct {
	posts map[string]*models.Post
	mu    sync.Mutex
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{posts: make(map[string]*models.Post)}
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	post.ID = primitive.NewObjectID()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = post.CreatedAt
	}
	stored := *post
	m.posts[post.ID.Hex()] = &stored
	return nil
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	out := *post
	return &out, nil
}

func (m *MockPostRepository) GetFeedPosts(ctx context.Context, viewerID uint, skip, limit int64) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return window(m.sorted(func(p *models.Post) bool {
		return p.Privacy == models.PrivacyPublic || p.AuthorID == viewerID
	}), skip, limit), nil
}

func (m *MockPostRepository) CountFeedPosts(ctx context.Context, viewerID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int64(len(m.sorted(func(p *models.Post) bool {
		return p.Privacy == models.PrivacyPublic || p.AuthorID == viewerID
	}))), nil
}

func (m *MockPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, includePrivate bool, skip, limit int64) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return window(m.sorted(func(p *models.Post) bool {
		return p.AuthorID == authorID && (includePrivate || p.Privacy == models.PrivacyPublic)
	}), skip, limit), nil
}

func (m *MockPostRepository) CountPostsByAuthor(ctx context.Context, authorID uint, includePrivate bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int64(len(m.sorted(func(p *models.Post) bool {
		return p.AuthorID == authorID && (includePrivate || p.Privacy == models.PrivacyPublic)
	}))), nil
}

func (m *MockPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	post.UpdatedAt = time.Now()
	stored.Content = post.Content
	stored.Image = post.Image
	stored.Privacy = post.Privacy
	stored.UpdatedAt = post.UpdatedAt
	return nil
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

// sorted filters and orders posts newest first; ObjectID hex breaks
// same-timestamp ties since ids increase with creation.
func (m *MockPostRepository) sorted(keep func(*models.Post) bool) []models.Post {
	out := []models.Post{}
	for _, p := range m.posts {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func window(posts []models.Post, skip, limit int64) []models.Post {
	if skip >= int64(len(posts)) {
		return []models.Post{}
	}
	posts = posts[skip:]
	if limit > 0 && limit < int64(len(posts)) {
		posts = posts[:limit]
	}
	return posts
}
