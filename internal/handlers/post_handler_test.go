package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"github.com/kamruz-zzaman/applify-backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostHandler_CreatePost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "Alice", "alice@example.com")

	c, rec := env.request(t, http.MethodPost, "/api/v1/posts", models.CreatePostRequest{
		Content: "  hello world  ",
	}, author.ID)
	require.NoError(t, env.posts.CreatePost(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.True(t, body.Success)

	data := dataMap(t, body)
	assert.Equal(t, "hello world", data["content"], "content is stored trimmed")
	assert.Equal(t, models.PrivacyPublic, data["privacy"], "privacy defaults to public")
	assert.Equal(t, float64(0), data["likes_count"])
	assert.Equal(t, false, data["is_liked"])

	postAuthor, ok := data["author"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Alice", postAuthor["name"])
}

func TestPostHandler_CreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "Alice", "alice@example.com")

	t.Run("whitespace-only content", func(t *testing.T) {
		c, rec := env.request(t, http.MethodPost, "/api/v1/posts", models.CreatePostRequest{
			Content: "   \n\t  ",
		}, author.ID)
		require.NoError(t, env.posts.CreatePost(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeEnvelope(t, rec)
		assert.Equal(t, "Validation failed", body.Message)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "content", body.Errors[0].Field)
		assert.Equal(t, "is required", body.Errors[0].Message)
	})

	t.Run("unknown privacy level", func(t *testing.T) {
		c, rec := env.request(t, http.MethodPost, "/api/v1/posts", models.CreatePostRequest{
			Content: "hello",
			Privacy: "friends-only",
		}, author.ID)
		require.NoError(t, env.posts.CreatePost(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeEnvelope(t, rec)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "privacy", body.Errors[0].Field)
		assert.Equal(t, "must be one of: public, private", body.Errors[0].Message)
	})
}

func TestPostHandler_CreatePostImageWithoutUploader(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "Alice", "alice@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("content", "post with attachment"))
	fw, err := mw.CreateFormFile("image", "photo.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	c.Set("user", &models.JwtCustomClaims{UserID: author.ID})

	require.NoError(t, env.posts.CreatePost(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Media upload is not configured", decodeEnvelope(t, rec).Message)
}

func TestPostHandler_GetPost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "Alice", "alice@example.com")
	stranger := env.createUser(t, "Bob", "bob@example.com")

	public := env.seedPost(t, author.ID, "public post", models.PrivacyPublic, time.Now())
	private := env.seedPost(t, author.ID, "private post", models.PrivacyPrivate, time.Now())
	env.seedLike(t, stranger.ID, models.TargetTypePost, public.ID.Hex())

	t.Run("public post is annotated for the viewer", func(t *testing.T) {
		c, rec := env.request(t, http.MethodGet, "/api/v1/posts/"+public.ID.Hex(), nil, stranger.ID)
		c.SetParamNames("id")
		c.SetParamValues(public.ID.Hex())
		require.NoError(t, env.posts.GetPost(c))
		require.Equal(t, http.StatusOK, rec.Code)

		data := dataMap(t, decodeEnvelope(t, rec))
		assert.Equal(t, "public post", data["content"])
		assert.Equal(t, float64(1), data["likes_count"])
		assert.Equal(t, true, data["is_liked"])
	})

	t.Run("private post resolves for its author", func(t *testing.T) {
		c, rec := env.request(t, http.MethodGet, "/api/v1/posts/"+private.ID.Hex(), nil, author.ID)
		c.SetParamNames("id")
		c.SetParamValues(private.ID.Hex())
		require.NoError(t, env.posts.GetPost(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("private post is indistinguishable from a missing one", func(t *testing.T) {
		c, rec := env.request(t, http.MethodGet, "/api/v1/posts/"+private.ID.Hex(), nil, stranger.ID)
		c.SetParamNames("id")
		c.SetParamValues(private.ID.Hex())
		require.NoError(t, env.posts.GetPost(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Post not found", decodeEnvelope(t, rec).Message)
	})

	t.Run("unknown id", func(t *testing.T) {
		c, rec := env.request(t, http.MethodGet, "/api/v1/posts/ffffffffffffffffffffffff", nil, stranger.ID)
		c.SetParamNames("id")
		c.SetParamValues("ffffffffffffffffffffffff")
		require.NoError(t, env.posts.GetPost(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPostHandler_UpdatePost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "Alice", "alice@example.com")
	stranger := env.createUser(t, "Bob", "bob@example.com")
	post := env.seedPost(t, author.ID, "original", models.PrivacyPublic, time.Now())

	t.Run("non-author is forbidden", func(t *testing.T) {
		c, rec := env.request(t, http.MethodPut, "/api/v1/posts/"+post.ID.Hex(), models.UpdatePostRequest{
			Content: "hijacked",
		}, stranger.ID)
		c.SetParamNames("id")
		c.SetParamValues(post.ID.Hex())
		require.NoError(t, env.posts.UpdatePost(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "You are not authorized to update this post", decodeEnvelope(t, rec).Message)
	})

	t.Run("author replaces content and keeps privacy", func(t *testing.T) {
		c, rec := env.request(t, http.MethodPut, "/api/v1/posts/"+post.ID.Hex(), models.UpdatePostRequest{
			Content: "  rewritten  ",
		}, author.ID)
		c.SetParamNames("id")
		c.SetParamValues(post.ID.Hex())
		require.NoError(t, env.posts.UpdatePost(c))
		require.Equal(t, http.StatusOK, rec.Code)

		data := dataMap(t, decodeEnvelope(t, rec))
		assert.Equal(t, "rewritten", data["content"])
		assert.Equal(t, models.PrivacyPublic, data["privacy"])
	})

	t.Run("privacy changes when provided", func(t *testing.T) {
		c, rec := env.request(t, http.MethodPut, "/api/v1/posts/"+post.ID.Hex(), models.UpdatePostRequest{
			Content: "rewritten again",
			Privacy: models.PrivacyPrivate,
		}, author.ID)
		c.SetParamNames("id")
		c.SetParamValues(post.ID.Hex())
		require.NoError(t, env.posts.UpdatePost(c))
		require.Equal(t, http.StatusOK, rec.Code)

		data := dataMap(t, decodeEnvelope(t, rec))
		assert.Equal(t, models.PrivacyPrivate, data["privacy"])
	})

	t.Run("missing post", func(t *testing.T) {
		c, rec := env.request(t, http.MethodPut, "/api/v1/posts/ffffffffffffffffffffffff", models.UpdatePostRequest{
			Content: "whatever",
		}, author.ID)
		c.SetParamNames("id")
		c.SetParamValues("ffffffffffffffffffffffff")
		require.NoError(t, env.posts.UpdatePost(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPostHandler_DeletePost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "Alice", "alice@example.com")
	stranger := env.createUser(t, "Bob", "bob@example.com")
	post := env.seedPost(t, author.ID, "doomed", models.PrivacyPublic, time.Now())
	postID := post.ID.Hex()

	env.seedLike(t, author.ID, models.TargetTypePost, postID)
	env.seedLike(t, stranger.ID, models.TargetTypePost, postID)
	comment := env.seedComment(t, postID, stranger.ID, nil, "still here after")

	t.Run("non-author is forbidden", func(t *testing.T) {
		c, rec := env.request(t, http.MethodDelete, "/api/v1/posts/"+postID, nil, stranger.ID)
		c.SetParamNames("id")
		c.SetParamValues(postID)
		require.NoError(t, env.posts.DeletePost(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("author deletes the post and its likes", func(t *testing.T) {
		c, rec := env.request(t, http.MethodDelete, "/api/v1/posts/"+postID, nil, author.ID)
		c.SetParamNames("id")
		c.SetParamValues(postID)
		require.NoError(t, env.posts.DeletePost(c))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeEnvelope(t, rec)
		assert.True(t, body.Success)
		assert.Equal(t, "Post deleted", body.Message)

		_, err := env.postRepo.GetPostByID(c.Request().Context(), postID)
		assert.ErrorIs(t, err, repositories.ErrPostNotFound)

		count, err := env.likeRepo.CountLikes(models.TargetTypePost, postID)
		require.NoError(t, err)
		assert.Zero(t, count, "likes on the post are cleaned up")

		// Comments are left in place
		_, err = env.commentRepo.GetCommentByID(comment.ID)
		assert.NoError(t, err)
	})

	t.Run("second delete answers 404", func(t *testing.T) {
		c, rec := env.request(t, http.MethodDelete, "/api/v1/posts/"+postID, nil, author.ID)
		c.SetParamNames("id")
		c.SetParamValues(postID)
		require.NoError(t, env.posts.DeletePost(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
