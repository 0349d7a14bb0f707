package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	checkoutdomain "github.com/reelforge/reelforge/internal/checkout/domain"
	orderdomain "github.com/reelforge/reelforge/internal/order/domain"
	recipedomain "github.com/reelforge/reelforge/internal/recipe/domain"
	upgradedomain "github.com/reelforge/reelforge/internal/upgrade/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, checkoutdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, cartdomain.ErrRecipeLocked),
		errors.Is(err, upgradedomain.ErrNotEligible):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, checkoutdomain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCatalogValidationError(err),
		isBrandValidationError(err),
		isCartValidationError(err),
		isUpgradeValidationError(err),
		isOrderValidationError(err),
		isCheckoutValidationError(err):
		return true
	default:
		return false
	}
}

func isCatalogValidationError(err error) bool {
	switch err {
	case catalogdomain.ErrInvalidMinVideos,
		catalogdomain.ErrInvalidTierName,
		catalogdomain.ErrInvalidDiscount,
		catalogdomain.ErrLadderViolation:
		return true
	default:
		return false
	}
}

func isBrandValidationError(err error) bool {
	switch err {
	case branddomain.ErrInvalidBrand,
		branddomain.ErrInvalidUser,
		branddomain.ErrInvalidName:
		return true
	default:
		return false
	}
}

func isCartValidationError(err error) bool {
	switch err {
	case cartdomain.ErrInvalidBrand,
		cartdomain.ErrInvalidItem,
		cartdomain.ErrInvalidRecipe,
		cartdomain.ErrEmptyCart:
		return true
	default:
		return false
	}
}

func isUpgradeValidationError(err error) bool {
	switch err {
	case upgradedomain.ErrInvalidBrand,
		upgradedomain.ErrInvalidRequest,
		upgradedomain.ErrMissingProof,
		upgradedomain.ErrInvalidReviewerID:
		return true
	default:
		return false
	}
}

func isOrderValidationError(err error) bool {
	switch err {
	case orderdomain.ErrInvalidBrand,
		orderdomain.ErrInvalidOrder,
		orderdomain.ErrInvalidStatus,
		orderdomain.ErrMissingBrief:
		return true
	default:
		return false
	}
}

func isCheckoutValidationError(err error) bool {
	switch err {
	case checkoutdomain.ErrInvalidBrand,
		checkoutdomain.ErrInvalidUser,
		checkoutdomain.ErrEmptyCart,
		checkoutdomain.ErrInvalidPayload,
		checkoutdomain.ErrInvalidEvent,
		checkoutdomain.ErrInvalidMetadata:
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, catalogdomain.ErrDuplicateRung),
		errors.Is(err, upgradedomain.ErrPendingExists),
		errors.Is(err, orderdomain.ErrInvalidTransition):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, branddomain.ErrNotFound),
		errors.Is(err, recipedomain.ErrNotFound),
		errors.Is(err, cartdomain.ErrItemNotFound),
		errors.Is(err, upgradedomain.ErrNotFound),
		errors.Is(err, upgradedomain.ErrMilestoneMissing),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, checkoutdomain.ErrProviderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

// classifyErrorForLog buckets handler errors into the type/code pair carried
// on the request log line.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, payload := mapError(err)
	code := err.Error()
	if status >= 500 {
		code = payload.Type
	}
	return payload.Type, code
}
