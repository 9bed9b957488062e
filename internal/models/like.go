package models

import "time"

// Like target types.
const (
	TargetTypePost    = "post"
	TargetTypeComment = "comment"
)

// Like represents a like on a post or a comment. TargetID holds the post's
// MongoDB ObjectID hex or the comment's numeric id as a string; the target is
// a weak reference, no foreign key backs it. The compound unique index is
// what keeps concurrent toggles from double-liking.
type Like struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_target_like"`
	TargetType string    `json:"target_type" gorm:"size:20;uniqueIndex:idx_user_target_like"`
	TargetID   string    `json:"target_id" gorm:"size:64;index;uniqueIndex:idx_user_target_like"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToggleLikeRequest defines the request body for toggling a like
type ToggleLikeRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=post comment"`
	TargetID   string `json:"target_id" validate:"required"`
}
