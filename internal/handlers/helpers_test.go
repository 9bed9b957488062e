package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kamruz-zzaman/applify-backend/internal/mocks"
	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"github.com/kamruz-zzaman/applify-backend/internal/repositories"
	"github.com/kamruz-zzaman/applify-backend/pkg/response"
	"github.com/kamruz-zzaman/applify-backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

// testEnv wires every handler against an in-memory SQLite database and the
// in-memory post repository, mirroring the production wiring minus Firebase.
type testEnv struct {
	e  *echo.Echo
	db *gorm.DB

	userRepo    repositories.UserRepository
	commentRepo repositories.CommentRepository
	likeRepo    repositories.LikeRepository
	postRepo    *mocks.MockPostRepository

	auth     *AuthHandler
	users    *UserHandler
	posts    *PostHandler
	feed     *FeedHandler
	comments *CommentHandler
	likes    *LikeHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	// Each pooled connection would otherwise see its own empty in-memory
	// database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Comment{}, &models.Like{}))

	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	userRepo := repositories.NewPostgresUserRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	postRepo := mocks.NewMockPostRepository()

	return &testEnv{
		e:           e,
		db:          db,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		postRepo:    postRepo,
		auth:        NewAuthHandler(userRepo, nil, testJWTSecret),
		users:       NewUserHandler(userRepo),
		posts:       NewPostHandler(postRepo, userRepo, likeRepo, nil),
		feed:        NewFeedHandler(postRepo, userRepo, likeRepo),
		comments:    NewCommentHandler(commentRepo, postRepo, userRepo, likeRepo),
		likes:       NewLikeHandler(likeRepo, userRepo),
	}
}

// request builds an echo context for a handler call. A JSON body is attached
// when body is non-nil, and claims for userID are stored the way the auth
// middleware would; userID 0 means unauthenticated.
func (env *testEnv) request(t *testing.T, method, target string, body interface{}, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

func (env *testEnv) createUser(t *testing.T, name, email string) *models.User {
	t.Helper()

	// MinCost keeps the hashing out of the test runtime
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Name: name, Email: email, Password: string(hashed)}
	require.NoError(t, env.userRepo.CreateUser(user))
	return user
}

func (env *testEnv) seedPost(t *testing.T, authorID uint, content, privacy string, createdAt time.Time) *models.Post {
	t.Helper()

	post := &models.Post{
		AuthorID:  authorID,
		Content:   content,
		Privacy:   privacy,
		CreatedAt: createdAt,
	}
	require.NoError(t, env.postRepo.CreatePost(context.Background(), post))
	return post
}

func (env *testEnv) seedComment(t *testing.T, postID string, authorID uint, parentID *uint, text string) *models.Comment {
	t.Helper()

	comment := &models.Comment{PostID: postID, AuthorID: authorID, ParentID: parentID, Text: text}
	require.NoError(t, env.commentRepo.CreateComment(comment))
	return comment
}

func (env *testEnv) seedLike(t *testing.T, userID uint, targetType, targetID string) {
	t.Helper()

	require.NoError(t, env.likeRepo.CreateLike(&models.Like{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
	}))
}

// envelope mirrors response.Envelope with the data left raw for per-test
// decoding.
type envelope struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Data       json.RawMessage       `json:"data"`
	Errors     []response.FieldError `json:"errors"`
	Pagination *response.Pagination  `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "response is not an envelope: %s", rec.Body.String())
	return body
}

func dataMap(t *testing.T, body envelope) map[string]interface{} {
	t.Helper()

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Data, &m))
	return m
}

func dataList(t *testing.T, body envelope) []map[string]interface{} {
	t.Helper()

	var l []map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Data, &l))
	return l
}
