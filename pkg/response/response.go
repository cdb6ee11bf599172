package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	customError "github.com/segyhp/gym-membership/pkg/errors"

	"go.uber.org/zap"
)

type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
	Error      string      `json:"error,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func write(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("Error encoding JSON response", zap.Error(err))
	}
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	write(w, statusCode, Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a created JSON response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Message sends a successful response carrying only a message and optional data
func Message(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// Paginated sends a list response with pagination metadata
func Paginated(w http.ResponseWriter, data interface{}, pagination interface{}) {
	write(w, http.StatusOK, Response{
		Success:    true,
		Data:       data,
		Pagination: pagination,
		Timestamp:  time.Now(),
	})
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	resp := ErrorResponse{
		Success:   false,
		Message:   message,
		Timestamp: time.Now(),
	}

	if err != nil {
		resp.Error = err.Error()
		var be *customError.BusinessError
		if errors.As(err, &be) {
			resp.Code = be.Code
		}
	}

	write(w, statusCode, resp)
}

// FromError maps a service error onto the matching HTTP status
func FromError(w http.ResponseWriter, err error) {
	message := "Internal server error"
	var be *customError.BusinessError
	if errors.As(err, &be) {
		message = be.Message
	}

	switch {
	case errors.Is(err, customError.ErrValidation),
		errors.Is(err, customError.ErrInvalidDate),
		errors.Is(err, customError.ErrUnsupportedMembershipType),
		errors.Is(err, customError.ErrInvalidPaymentAmount):
		BadRequest(w, message, err)
	case errors.Is(err, customError.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, message, nil)
	case errors.Is(err, customError.ErrMemberNotFound),
		errors.Is(err, customError.ErrPaymentNotFound),
		errors.Is(err, customError.ErrAlertNotFound),
		errors.Is(err, customError.ErrAdminNotFound):
		NotFound(w, message)
	case errors.Is(err, customError.ErrConcurrentModification),
		errors.Is(err, customError.ErrDuplicateMember):
		Conflict(w, message, err)
	case errors.Is(err, customError.ErrStoreUnavailable):
		ServiceUnavailable(w, message, err)
	default:
		zap.L().Error("Unhandled service error", zap.Error(err))
		InternalServerError(w, message, nil)
	}
}

// BadRequest sends a 400 bad request response
func BadRequest(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusBadRequest, message, err)
}

// NotFound sends a 404 not found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message, nil)
}

// Conflict sends a 409 conflict response
func Conflict(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusConflict, message, err)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusInternalServerError, message, err)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusServiceUnavailable, message, err)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 forbidden response
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message, nil)
}

// TooManyRequests sends a 429 response
func TooManyRequests(w http.ResponseWriter, message string) {
	Error(w, http.StatusTooManyRequests, message, nil)
}

// CORSMiddleware adds CORS headers for the configured origin
func CORSMiddleware(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if origin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response recorder to capture the status code
			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *responseRecorder) WriteHeader(statusCode int) {
	rec.statusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}
