package handlers

import (
	"errors"
	"strconv"

	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"github.com/kamruz-zzaman/applify-backend/internal/repositories"
	"github.com/kamruz-zzaman/applify-backend/pkg/response"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	likeRepository repositories.LikeRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		likeRepository: likeRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/users/:id/posts", h.GetUserPosts)
}

// PostResponse is a post annotated with author info and like state for the
// requesting user. Both counts are derived at read time, never stored.
type PostResponse struct {
	models.Post
	Author     models.UserCompact `json:"author"`
	LikesCount int64              `json:"likes_count"`
	IsLiked    bool               `json:"is_liked"`
}

// parsePageLimit reads the page/limit query params with defaults. The limit
// caps at 50.
func parsePageLimit(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return page, limit
}

// GetFeed returns the paginated feed visible to the current user: every
// public post plus the user's own private ones, newest first.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	page, limit := parsePageLimit(c)
	skip := int64((page - 1) * limit)

	posts, err := h.postRepository.GetFeedPosts(c.Request().Context(), viewerID, skip, int64(limit))
	if err != nil {
		return response.Internal(c, err)
	}

	total, err := h.postRepository.CountFeedPosts(c.Request().Context(), viewerID)
	if err != nil {
		return response.Internal(c, err)
	}

	annotated, err := h.annotatePosts(posts, viewerID)
	if err != nil {
		return response.Internal(c, err)
	}

	return response.Paginated(c, annotated, response.NewPagination(page, limit, total))
}

// GetUserPosts returns one user's posts, newest first. Private posts show up
// only when the user requests their own listing.
func (h *FeedHandler) GetUserPosts(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if _, err := h.userRepository.GetUserByID(uint(targetID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.Internal(c, err)
	}

	page, limit := parsePageLimit(c)
	skip := int64((page - 1) * limit)
	includePrivate := viewerID == uint(targetID)

	posts, err := h.postRepository.GetPostsByAuthor(c.Request().Context(), uint(targetID), includePrivate, skip, int64(limit))
	if err != nil {
		return response.Internal(c, err)
	}

	total, err := h.postRepository.CountPostsByAuthor(c.Request().Context(), uint(targetID), includePrivate)
	if err != nil {
		return response.Internal(c, err)
	}

	annotated, err := h.annotatePosts(posts, viewerID)
	if err != nil {
		return response.Internal(c, err)
	}

	return response.Paginated(c, annotated, response.NewPagination(page, limit, total))
}

// annotatePosts resolves the authors in one batch query, then fans the
// per-post like lookups out concurrently. Every lookup completes before the
// result is returned; each goroutine writes only its own slot.
func (h *FeedHandler) annotatePosts(posts []models.Post, viewerID uint) ([]PostResponse, error) {
	authorIDs := make([]uint, 0, len(posts))
	seen := make(map[uint]bool)
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := h.userRepository.GetUsersByIDs(authorIDs)
	if err != nil {
		return nil, err
	}

	annotated := make([]PostResponse, len(posts))
	var g errgroup.Group
	for i, p := range posts {
		// This module builds with go 1.21, where range variables are shared
		// across iterations; the copies keep each goroutine on its own slot.
		i, p := i, p
		annotated[i] = PostResponse{Post: p}
		if author, ok := authors[p.AuthorID]; ok {
			annotated[i].Author = author.ToCompact()
		}

		g.Go(func() error {
			postID := p.ID.Hex()
			count, err := h.likeRepository.CountLikes(models.TargetTypePost, postID)
			if err != nil {
				return err
			}
			liked, err := h.likeRepository.HasUserLiked(viewerID, models.TargetTypePost, postID)
			if err != nil {
				return err
			}
			annotated[i].LikesCount = count
			annotated[i].IsLiked = liked
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return annotated, nil
}
