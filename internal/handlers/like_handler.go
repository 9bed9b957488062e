package handlers

import (
	"errors"
	"time"

	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"github.com/kamruz-zzaman/applify-backend/internal/repositories"
	"github.com/kamruz-zzaman/applify-backend/pkg/response"
	"github.com/kamruz-zzaman/applify-backend/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	userRepository repositories.UserRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, userRepo repositories.UserRepository) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		userRepository: userRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/likes/toggle", h.ToggleLike)
	g.GET("/likes/:target_type/:target_id", h.GetLikesByTarget)
}

// ToggleLikeResult reports the like state after a toggle.
type ToggleLikeResult struct {
	IsLiked    bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`
}

// LikerResponse is one entry of a target's likers listing.
type LikerResponse struct {
	User      models.UserCompact `json:"user"`
	CreatedAt time.Time          `json:"created_at"`
}

// ToggleLike flips the caller's like on a target. The target id is a weak
// reference and is not checked for existence. Concurrent toggles race on the
// check, but the unique index keeps a user from double-liking: a duplicate
// insert counts as already liked.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationFailed(c, validators.Violations(err))
	}

	isLiked := false
	_, err := h.likeRepository.GetLike(userID, req.TargetType, req.TargetID)
	switch {
	case err == nil:
		// A concurrent toggle may have removed it already; either way the
		// like is gone
		if err := h.likeRepository.DeleteLike(userID, req.TargetType, req.TargetID); err != nil && !errors.Is(err, repositories.ErrLikeNotFound) {
			return response.Internal(c, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := &models.Like{
			UserID:     userID,
			TargetType: req.TargetType,
			TargetID:   req.TargetID,
		}
		if err := h.likeRepository.CreateLike(like); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Internal(c, err)
		}
		isLiked = true
	default:
		return response.Internal(c, err)
	}

	count, err := h.likeRepository.CountLikes(req.TargetType, req.TargetID)
	if err != nil {
		return response.Internal(c, err)
	}

	return response.Success(c, ToggleLikeResult{IsLiked: isLiked, LikesCount: count})
}

// GetLikesByTarget lists who liked a target, newest first
func (h *LikeHandler) GetLikesByTarget(c echo.Context) error {
	targetType := c.Param("target_type")
	targetID := c.Param("target_id")
	if targetType != models.TargetTypePost && targetType != models.TargetTypeComment {
		return response.BadRequest(c, "Invalid target type")
	}

	likes, err := h.likeRepository.GetLikesByTarget(targetType, targetID)
	if err != nil {
		return response.Internal(c, err)
	}

	userIDs := make([]uint, 0, len(likes))
	seen := make(map[uint]bool)
	for _, like := range likes {
		if !seen[like.UserID] {
			seen[like.UserID] = true
			userIDs = append(userIDs, like.UserID)
		}
	}
	users, err := h.userRepository.GetUsersByIDs(userIDs)
	if err != nil {
		return response.Internal(c, err)
	}

	likers := make([]LikerResponse, 0, len(likes))
	for _, like := range likes {
		liker := LikerResponse{CreatedAt: like.CreatedAt}
		if user, ok := users[like.UserID]; ok {
			liker.User = user.ToCompact()
		}
		likers = append(likers, liker)
	}

	return response.Success(c, likers)
}
