package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"github.com/kamruz-zzaman/applify-backend/internal/repositories"
	"github.com/kamruz-zzaman/applify-backend/pkg/response"
	"github.com/kamruz-zzaman/applify-backend/pkg/upload"
	"github.com/kamruz-zzaman/applify-backend/validators"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	likeRepository repositories.LikeRepository
	uploader       *upload.Uploader
}

// NewPostHandler creates a new PostHandler. uploader may be nil when media
// upload is not configured; multipart image uploads then answer 503.
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	uploader *upload.Uploader,
) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		likeRepository: likeRepo,
		uploader:       uploader,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post. The body is JSON, or a multipart form when
// the client attaches an image file; the file goes through the uploader and
// only its URL is stored.
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request payload")
	}

	req.Content = strings.TrimSpace(req.Content)
	if err := c.Validate(&req); err != nil {
		return response.ValidationFailed(c, validators.Violations(err))
	}
	if req.Privacy == "" {
		req.Privacy = models.PrivacyPublic
	}

	image := req.Image
	if file, err := c.FormFile("image"); err == nil {
		if h.uploader == nil {
			return response.Error(c, http.StatusServiceUnavailable, "Media upload is not configured")
		}
		url, err := h.uploader.UploadImage(c.Request().Context(), file)
		if err != nil {
			return response.Internal(c, err)
		}
		image = url
	}

	post := &models.Post{
		AuthorID: userID,
		Content:  req.Content,
		Image:    image,
		Privacy:  req.Privacy,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return response.Internal(c, err)
	}

	annotated, err := h.annotatePost(c, post)
	if err != nil {
		return response.Internal(c, err)
	}
	return response.Created(c, annotated)
}

// GetPost retrieves a post by ID. Private posts resolve only for their
// author; everyone else gets the same 404 a missing post would produce.
func (h *PostHandler) GetPost(c echo.Context) error {
	userID := getUserIDFromContext(c)

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return response.NotFound(c, "Post not found")
		}
		return response.Internal(c, err)
	}
	if post.Privacy == models.PrivacyPrivate && post.AuthorID != userID {
		return response.NotFound(c, "Post not found")
	}

	annotated, err := h.annotatePost(c, post)
	if err != nil {
		return response.Internal(c, err)
	}
	return response.Success(c, annotated)
}

// UpdatePost updates an existing post. Content is replaced wholesale;
// privacy and image change only when provided.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request payload")
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := c.Validate(&req); err != nil {
		return response.ValidationFailed(c, validators.Violations(err))
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return response.NotFound(c, "Post not found")
		}
		return response.Internal(c, err)
	}
	if post.AuthorID != userID {
		return response.Forbidden(c, "You are not authorized to update this post")
	}

	post.Content = req.Content
	if req.Privacy != "" {
		post.Privacy = req.Privacy
	}
	if req.Image != "" {
		post.Image = req.Image
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), postID, post); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return response.NotFound(c, "Post not found")
		}
		return response.Internal(c, err)
	}

	annotated, err := h.annotatePost(c, post)
	if err != nil {
		return response.Internal(c, err)
	}
	return response.Success(c, annotated)
}

// DeletePost deletes a post and its likes. The two deletes are separate
// stores and are not atomic; a failure after the first leaves orphaned
// likes behind. Comments on the post are left in place.
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return response.NotFound(c, "Post not found")
		}
		return response.Internal(c, err)
	}
	if post.AuthorID != userID {
		return response.Forbidden(c, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return response.NotFound(c, "Post not found")
		}
		return response.Internal(c, err)
	}

	if err := h.likeRepository.DeleteLikesForTarget(models.TargetTypePost, postID); err != nil {
		// The post itself is already gone; the stale likes are unreachable.
		log.Printf("failed to delete likes for post %s: %v", postID, err)
	}

	return response.Message(c, "Post deleted")
}

// annotatePost attaches the author and like state to a single post.
func (h *PostHandler) annotatePost(c echo.Context, post *models.Post) (*PostResponse, error) {
	annotated := &PostResponse{Post: *post}

	author, err := h.userRepository.GetUserByID(post.AuthorID)
	if err == nil {
		annotated.Author = author.ToCompact()
	}

	postID := post.ID.Hex()
	count, err := h.likeRepository.CountLikes(models.TargetTypePost, postID)
	if err != nil {
		return nil, err
	}
	liked, err := h.likeRepository.HasUserLiked(getUserIDFromContext(c), models.TargetTypePost, postID)
	if err != nil {
		return nil, err
	}
	annotated.LikesCount = count
	annotated.IsLiked = liked
	return annotated, nil
}
