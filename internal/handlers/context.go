package handlers

import (
	"github.com/kamruz-zzaman/applify-backend/internal/models"
	"github.com/labstack/echo/v4"
)

// getUserClaims returns the JWT claims stored by the auth middleware, nil
// when the request carries none.
func getUserClaims(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// getUserIDFromContext returns the authenticated user's id, zero for an
// unauthenticated request.
func getUserIDFromContext(c echo.Context) uint {
	if claims := getUserClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}
