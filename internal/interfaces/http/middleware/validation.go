package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/alfred/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator names fields after their json (or form) tag and registers
// the httpurl tag used for media and page URLs
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("httpurl", validateHTTPURL)
}

func fieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	}
	return name
}

// validateHTTPURL accepts absolute http and https URLs with a host. The
// studio worker and the page renderer fetch these, so other schemes are
// refused at the edge.
func validateHTTPURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// FormatValidationErrors turns binding errors into the validation envelope
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, e := range fieldErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: validationMessage(e),
			})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 validation response, or 413 when the
// body was cut off by BodyLimit while streaming
func HandleValidationError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortPayloadTooLarge(c)
		return
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min", "max":
		bound := "at least "
		if e.Tag() == "max" {
			bound = "at most "
		}
		switch e.Kind() {
		case reflect.String:
			return "Must be " + bound + e.Param() + " characters"
		case reflect.Slice, reflect.Map:
			return "Must have " + bound + e.Param() + " items"
		}
		return "Must be " + bound + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "url":
		return "Invalid URL format"
	case "httpurl":
		return "Must be an http or https URL"
	case "email":
		return "Invalid email format"
	default:
		return "Invalid value"
	}
}
