package middleware

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// AuthRateLimiter bounds how fast a single client IP can hit the auth
// endpoints. Exceeding the limit answers 429 through the global error
// handler.
func AuthRateLimiter(limit float64, burst int) echo.MiddlewareFunc {
	store := eMiddleware.NewRateLimiterMemoryStoreWithConfig(eMiddleware.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(limit),
		Burst: burst,
	})
	return eMiddleware.RateLimiter(store)
}
