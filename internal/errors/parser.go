package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns a persistence error into a code and a message that is
// safe to show. resource names what the caller was working on ("product",
// "bundle", "partner", "order") and only shapes the wording.
func ParseError(err error, resource string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(resource), Message: notFoundMessage(resource)}
	}

	lower := strings.ToLower(err.Error())

	// postgres 23505, sqlite "UNIQUE constraint failed"
	if strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint") {
		return parseDuplicateKeyError(lower)
	}

	if strings.Contains(lower, "foreign key constraint") {
		if strings.Contains(lower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "The " + label(resource) + " is still in use and cannot be deleted"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
	}

	if strings.Contains(lower, "violates not-null constraint") || strings.Contains(lower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(lower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidRange, Message: "A value is out of range"}
	}

	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "timeout") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "The service is temporarily unavailable"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "Something went wrong, please try again later"}
}

func parseDuplicateKeyError(lower string) ErrorInfo {
	switch {
	case strings.Contains(lower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
	case strings.Contains(lower, "bundle") && strings.Contains(lower, "slug"):
		return ErrorInfo{Code: BundleSlugExists, Message: "A bundle with this slug already exists"}
	case strings.Contains(lower, "partner"):
		return ErrorInfo{Code: PartnerAlreadyApplied, Message: "A partner application already exists"}
	case strings.Contains(lower, "sku"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "A variant with this SKU already exists"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
}

func notFoundCode(resource string) string {
	switch strings.ToLower(resource) {
	case "product":
		return ProductNotFound
	case "variant":
		return ProductVariantNotFound
	case "bundle":
		return BundleNotFound
	case "partner":
		return PartnerNotFound
	}
	return ResourceNotFound
}

func notFoundMessage(resource string) string {
	return "The requested " + label(resource) + " was not found"
}

func label(resource string) string {
	if resource == "" {
		return "record"
	}
	return strings.ToLower(resource)
}

// ParseAndRespond parses err and writes it with the given status
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, resource string) {
	info := ParseError(err, resource)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
