package response

import (
	"log"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Pagination describes the window of a paginated listing. Total comes from a
// separate count query, so it can drift under concurrent writes.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Envelope is the uniform response body every endpoint answers with.
type Envelope struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message,omitempty"`
	Data       interface{}  `json:"data,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

// NewPagination computes the page count for a listing window.
func NewPagination(page, limit int, total int64) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Success answers 200 with a data payload.
func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created answers 201 with the created entity.
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message answers 200 with a message and no payload.
func Message(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Paginated answers 200 with a data payload and its pagination window.
func Paginated(c echo.Context, data interface{}, p *Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: p})
}

// Error answers with a failure envelope carrying the given status and message.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c echo.Context, message string) error {
	return Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c echo.Context, message string) error {
	return Error(c, http.StatusForbidden, message)
}

func NotFound(c echo.Context, message string) error {
	return Error(c, http.StatusNotFound, message)
}

// ValidationFailed answers 400 with the per-field violations.
func ValidationFailed(c echo.Context, errs []FieldError) error {
	return c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: "Validation failed", Errors: errs})
}

// Internal logs the error and answers 500 with a generic message so internals
// never leak to clients.
func Internal(c echo.Context, err error) error {
	log.Printf("internal error: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return Error(c, http.StatusInternalServerError, "Something went wrong")
}

// HTTPErrorHandler converts errors that escape the handlers (echo's own 404
// and 405, middleware rejections, panics caught by Recover) into the same
// envelope the handlers produce.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Something went wrong"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	} else {
		log.Printf("unhandled error: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if writeErr := Error(c, status, message); writeErr != nil {
		log.Printf("failed to write error response: %v", writeErr)
	}
}
