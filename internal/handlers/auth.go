package handlers

import (
	"errors"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"github.com/kamruz-zzaman/applify-backend/internal/repositories"
	"github.com/kamruz-zzaman/applify-backend/pkg/response"
	"github.com/kamruz-zzaman/applify-backend/validators"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler. firebaseAuthClient may be nil
// when Firebase is not configured; the firebase-login route then answers 503.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationFailed(c, validators.Violations(err))
	}

	// Check first so the common case gets a clean message; two concurrent
	// signups with the same email still collide on the unique index below.
	if _, err := h.userRepository.GetUserByEmail(req.Email); err == nil {
		return response.BadRequest(c, "Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return response.Internal(c, err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.BadRequest(c, "Email already registered")
		}
		return response.Internal(c, err)
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return response.Internal(c, err)
	}

	return response.Created(c, models.AuthResponse{Token: token, User: *user})
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationFailed(c, validators.Violations(err))
	}

	// Same answer for unknown email and wrong password
	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		return response.Unauthorized(c, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return response.Unauthorized(c, "Invalid email or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return response.Internal(c, err)
	}

	return response.Success(c, models.AuthResponse{Token: token, User: *user})
}

// FirebaseLogin verifies a Firebase ID token, finds or creates the local
// user, and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return response.Error(c, http.StatusServiceUnavailable, "Social login is not configured")
	}

	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationFailed(c, validators.Violations(err))
	}

	token, err := h.firebaseAuth.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	if email == "" {
		return response.BadRequest(c, "Firebase token carries no email")
	}

	user, err := h.findOrCreateFirebaseUser(token.UID, email, name)
	if err != nil {
		return response.Internal(c, err)
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return response.Internal(c, err)
	}

	return response.Success(c, models.AuthResponse{Token: localJWT, User: *user})
}

// findOrCreateFirebaseUser resolves the local account for a verified Firebase
// identity: by Firebase UID first, then by email (linking the UID), and
// finally by creating a fresh user.
func (h *AuthHandler) findOrCreateFirebaseUser(firebaseUID, email, name string) (*models.User, error) {
	user, err := h.userRepository.GetUserByFirebaseUID(firebaseUID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err = h.userRepository.GetUserByEmail(email)
	if err == nil {
		user.FirebaseUID = firebaseUID
		if err := h.userRepository.UpdateUser(user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	newUser := &models.User{
		Name:        name,
		Email:       email,
		FirebaseUID: firebaseUID,
	}
	if err := h.userRepository.CreateUser(newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)), // Token expires in 72 hours
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return "", err
	}
	return t, nil
}
