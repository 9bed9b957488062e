package repositories

import (
	"errors"

	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"gorm.io/gorm"
)

// ErrLikeNotFound is returned when deleting a like that does not exist.
var ErrLikeNotFound = errors.New("like not found")

// LikeRepository defines the interface for like data operations. Targets are
// polymorphic: target type plus a target id string covering both posts and
// comments.
type LikeRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(userID uint, targetType, targetID string) error
	GetLike(userID uint, targetType, targetID string) (*models.Like, error)
	HasUserLiked(userID uint, targetType, targetID string) (bool, error)
	CountLikes(targetType, targetID string) (int64, error)
	GetLikesByTarget(targetType, targetID string) ([]models.Like, error)
	DeleteLikesForTarget(targetType, targetID string) error
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike creates a new like in PostgreSQL. A concurrent duplicate
// surfaces as gorm.ErrDuplicatedKey via the unique index.
func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

// DeleteLike deletes a user's like on a target from PostgreSQL
func (r *PostgresLikeRepository) DeleteLike(userID uint, targetType, targetID string) error {
	res := r.db.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLikeNotFound
	}
	return nil
}

// GetLike retrieves a user's like on a target
func (r *PostgresLikeRepository) GetLike(userID uint, targetType, targetID string) (*models.Like, error) {
	var like models.Like
	if err := r.db.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).First(&like).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

// HasUserLiked checks whether a user has liked a specific target
func (r *PostgresLikeRepository) HasUserLiked(userID uint, targetType, targetID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountLikes retrieves the count of likes on a specific target
func (r *PostgresLikeRepository) CountLikes(targetType, targetID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("target_type = ? AND target_id = ?", targetType, targetID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetLikesByTarget retrieves all likes on a specific target, newest first
func (r *PostgresLikeRepository) GetLikesByTarget(targetType, targetID string) ([]models.Like, error) {
	likes := []models.Like{}
	if err := r.db.Where("target_type = ? AND target_id = ?", targetType, targetID).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

// DeleteLikesForTarget deletes every like on a target. Used when the target
// itself is deleted; removing zero rows is fine.
func (r *PostgresLikeRepository) DeleteLikesForTarget(targetType, targetID string) error {
	return r.db.Where("target_type = ? AND target_id = ?", targetType, targetID).Delete(&models.Like{}).Error
}
