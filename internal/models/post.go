package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post privacy levels. Anything else is rejected at validation time.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	Content   string             `json:"content" bson:"content"`
	Image     string             `json:"image,omitempty" bson:"image,omitempty"`
	Privacy   string             `json:"privacy" bson:"privacy"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post.
// Image may also arrive as a multipart file instead of a URL.
type CreatePostRequest struct {
	Content string `json:"content" form:"content" validate:"required,min=1,max=5000"`
	Image   string `json:"image,omitempty" form:"image_url" validate:"omitempty,url"`
	Privacy string `json:"privacy,omitempty" form:"privacy" validate:"omitempty,oneof=public private"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
	Image   string `json:"image,omitempty" validate:"omitempty,url"`
	Privacy string `json:"privacy,omitempty" validate:"omitempty,oneof=public private"`
}
