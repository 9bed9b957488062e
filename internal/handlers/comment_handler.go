package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"github.com/kamruz-zzaman/applify-backend/internal/repositories"
	"github.com/kamruz-zzaman/applify-backend/pkg/response"
	"github.com/kamruz-zzaman/applify-backend/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	likeRepository    repositories.LikeRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		likeRepository:    likeRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.POST("/comments/:id/replies", h.CreateReply)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CommentResponse is a comment annotated with its author, like state and,
// for top-level comments, its replies.
type CommentResponse struct {
	models.Comment
	Author     models.UserCompact `json:"author"`
	LikesCount int64              `json:"likes_count"`
	IsLiked    bool               `json:"is_liked"`
	Replies    []CommentResponse  `json:"replies,omitempty"`
}

// commentTargetID renders a comment id the way likes reference it.
func commentTargetID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// CreateComment creates a top-level comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request payload")
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := c.Validate(&req); err != nil {
		return response.ValidationFailed(c, validators.Violations(err))
	}

	if _, err := h.getVisiblePost(c, postID, userID); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return response.NotFound(c, "Post not found")
		}
		return response.Internal(c, err)
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: userID,
		Text:     req.Text,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return response.Internal(c, err)
	}

	annotated, err := h.annotateComment(comment, h.authorCompact(userID), userID)
	if err != nil {
		return response.Internal(c, err)
	}
	return response.Created(c, annotated)
}

// CreateReply creates a reply under a top-level comment. Threads are two
// levels deep; replying to a reply is rejected.
func (h *CommentHandler) CreateReply(c echo.Context) error {
	userID := getUserIDFromContext(c)
	parentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid comment ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request payload")
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := c.Validate(&req); err != nil {
		return response.ValidationFailed(c, validators.Violations(err))
	}

	parent, err := h.commentRepository.GetCommentByID(uint(parentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Comment not found")
		}
		return response.Internal(c, err)
	}
	if parent.ParentID != nil {
		return response.BadRequest(c, "Cannot reply to a reply")
	}

	// The reply lives on the parent's post, whatever the caller claims
	reply := &models.Comment{
		PostID:   parent.PostID,
		AuthorID: userID,
		ParentID: &parent.ID,
		Text:     req.Text,
	}
	if err := h.commentRepository.CreateComment(reply); err != nil {
		return response.Internal(c, err)
	}

	annotated, err := h.annotateComment(reply, h.authorCompact(userID), userID)
	if err != nil {
		return response.Internal(c, err)
	}
	return response.Created(c, annotated)
}

// GetCommentsByPostID retrieves a post's comment thread: top-level comments
// oldest first, each carrying its replies oldest first.
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	if _, err := h.getVisiblePost(c, postID, viewerID); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return response.NotFound(c, "Post not found")
		}
		return response.Internal(c, err)
	}

	topLevel, err := h.commentRepository.GetTopLevelComments(postID)
	if err != nil {
		return response.Internal(c, err)
	}

	// Gather replies and every author id before annotating, so the authors
	// resolve in a single query
	repliesByParent := make(map[uint][]models.Comment, len(topLevel))
	authorIDs := make([]uint, 0, len(topLevel))
	seen := make(map[uint]bool)
	collect := func(id uint) {
		if !seen[id] {
			seen[id] = true
			authorIDs = append(authorIDs, id)
		}
	}
	for _, comment := range topLevel {
		collect(comment.AuthorID)
		replies, err := h.commentRepository.GetReplies(comment.ID)
		if err != nil {
			return response.Internal(c, err)
		}
		repliesByParent[comment.ID] = replies
		for _, reply := range replies {
			collect(reply.AuthorID)
		}
	}

	authors, err := h.userRepository.GetUsersByIDs(authorIDs)
	if err != nil {
		return response.Internal(c, err)
	}
	compactFor := func(id uint) models.UserCompact {
		if author, ok := authors[id]; ok {
			return author.ToCompact()
		}
		return models.UserCompact{}
	}

	thread := make([]CommentResponse, 0, len(topLevel))
	for _, comment := range topLevel {
		annotated, err := h.annotateComment(&comment, compactFor(comment.AuthorID), viewerID)
		if err != nil {
			return response.Internal(c, err)
		}
		replies := repliesByParent[comment.ID]
		annotated.Replies = make([]CommentResponse, 0, len(replies))
		for _, reply := range replies {
			annotatedReply, err := h.annotateComment(&reply, compactFor(reply.AuthorID), viewerID)
			if err != nil {
				return response.Internal(c, err)
			}
			annotated.Replies = append(annotated.Replies, *annotatedReply)
		}
		thread = append(thread, *annotated)
	}

	return response.Success(c, thread)
}

// UpdateComment updates an existing comment's text
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid comment ID")
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request payload")
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := c.Validate(&req); err != nil {
		return response.ValidationFailed(c, validators.Violations(err))
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Comment not found")
		}
		return response.Internal(c, err)
	}
	if comment.AuthorID != userID {
		return response.Forbidden(c, "You are not authorized to update this comment")
	}

	comment.Text = req.Text
	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return response.Internal(c, err)
	}

	annotated, err := h.annotateComment(comment, h.authorCompact(comment.AuthorID), userID)
	if err != nil {
		return response.Internal(c, err)
	}
	return response.Success(c, annotated)
}

// DeleteComment deletes a comment, its replies, and the likes on the comment
// itself. The steps span two stores and are not atomic; likes on the deleted
// replies stay behind, unreachable once the replies are gone.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Comment not found")
		}
		return response.Internal(c, err)
	}
	if comment.AuthorID != userID {
		return response.Forbidden(c, "You are not authorized to delete this comment")
	}

	if err := h.commentRepository.DeleteComment(comment.ID); err != nil {
		return response.Internal(c, err)
	}
	if err := h.commentRepository.DeleteReplies(comment.ID); err != nil {
		log.Printf("failed to delete replies of comment %d: %v", comment.ID, err)
	}
	if err := h.likeRepository.DeleteLikesForTarget(models.TargetTypeComment, commentTargetID(comment.ID)); err != nil {
		log.Printf("failed to delete likes for comment %d: %v", comment.ID, err)
	}

	return response.Message(c, "Comment deleted")
}

// getVisiblePost loads a post the viewer may see. Private posts the viewer
// does not own resolve as ErrPostNotFound, same as missing ones.
func (h *CommentHandler) getVisiblePost(c echo.Context, postID string, viewerID uint) (*models.Post, error) {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return nil, err
	}
	if post.Privacy == models.PrivacyPrivate && post.AuthorID != viewerID {
		return nil, repositories.ErrPostNotFound
	}
	return post, nil
}

// authorCompact resolves a user's display fields, zero value when missing.
func (h *CommentHandler) authorCompact(id uint) models.UserCompact {
	if author, err := h.userRepository.GetUserByID(id); err == nil {
		return author.ToCompact()
	}
	return models.UserCompact{}
}

// annotateComment attaches the author and like state to a comment.
func (h *CommentHandler) annotateComment(comment *models.Comment, author models.UserCompact, viewerID uint) (*CommentResponse, error) {
	targetID := commentTargetID(comment.ID)
	count, err := h.likeRepository.CountLikes(models.TargetTypeComment, targetID)
	if err != nil {
		return nil, err
	}
	liked, err := h.likeRepository.HasUserLiked(viewerID, models.TargetTypeComment, targetID)
	if err != nil {
		return nil, err
	}
	return &CommentResponse{
		Comment:    *comment,
		Author:     author,
		LikesCount: count,
		IsLiked:    liked,
	}, nil
}
