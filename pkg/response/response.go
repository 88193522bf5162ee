package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "masterhub/pkg/errors"
	"masterhub/pkg/logger"
	"masterhub/pkg/utils"
)

type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

func Paginated(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Timestamp: now(),
		Data: PaginatedResponse{
			Items:      items,
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: utils.TotalPages(total, pageSize),
		},
	})
}

func Error(c echo.Context, err error) error {
	status, info := describe(err)
	return c.JSON(status, Response{
		Success:   false,
		Timestamp: now(),
		Error:     info,
	})
}

// HTTPErrorHandler is installed as echo's error handler so that any error a
// handler or middleware returns ends up in the same envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if writeErr := Error(c, err); writeErr != nil {
		logger.Error("HTTPErrorHandler: failed to write error response: %v", writeErr)
	}
}

func describe(err error) (int, *ErrorInfo) {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, &ErrorInfo{
			Code:    apperrors.CodeValidation,
			Message: validationMessage(validationErr),
		}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("%s: %v", appErr.Message, appErr.Err)
		}
		return appErr.Status, &ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, &ErrorInfo{
			Code:    codeForStatus(httpErr.Code),
			Message: fmt.Sprint(httpErr.Message),
		}
	}

	logger.Error("unhandled error: %v", err)
	return http.StatusInternalServerError, &ErrorInfo{
		Code:    apperrors.CodeInternal,
		Message: "An unexpected error occurred",
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperrors.CodeBadRequest
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeConflict
	case http.StatusTooManyRequests:
		return apperrors.CodeTooManyRequests
	}
	if status >= http.StatusInternalServerError {
		return apperrors.CodeInternal
	}
	return apperrors.CodeBadRequest
}

// validationMessage reports the first failing field.
func validationMessage(validationErr validator.ValidationErrors) string {
	if len(validationErr) == 0 {
		return "Invalid input data"
	}
	err := validationErr[0]
	field := strings.ToLower(err.Field())
	param := err.Param()

	switch err.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + param
	case "max":
		return field + " must be at most " + param
	case "oneof":
		return field + " must be one of: " + param
	case "latitude", "longitude":
		return field + " must be a valid " + err.Tag()
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " is invalid"
	}
}
