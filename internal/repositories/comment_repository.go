package repositories

import (
	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	GetTopLevelComments(postID string) ([]models.Comment, error)
	GetReplies(parentID uint) ([]models.Comment, error)
	UpdateComment(comment *models.Comment) error
	DeleteComment(id uint) error
	DeleteReplies(parentID uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetTopLevelComments retrieves a post's top-level comments, oldest first
func (r *PostgresCommentRepository) GetTopLevelComments(postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := r.db.Where("post_id = ? AND parent_id IS NULL", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// GetReplies retrieves the replies of a comment, oldest first
func (r *PostgresCommentRepository) GetReplies(parentID uint) ([]models.Comment, error) {
	replies := []models.Comment{}
	if err := r.db.Where("parent_id = ?", parentID).Order("created_at ASC").Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// UpdateComment updates an existing comment in PostgreSQL
func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// DeleteComment deletes a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) DeleteComment(id uint) error {
	return r.db.Delete(&models.Comment{}, id).Error
}

// DeleteReplies deletes every reply under the given comment. Deleting none
// is not an error: top-level comments may have no replies.
func (r *PostgresCommentRepository) DeleteReplies(parentID uint) error {
	return r.db.Where("parent_id = ?", parentID).Delete(&models.Comment{}).Error
}
