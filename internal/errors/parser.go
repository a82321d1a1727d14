package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Category buckets persistence failures by how callers should react:
// not-found and validation map to user-facing responses, transient failures
// are retryable, integrity violations are surfaced immediately and never
// retried.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryValidation
	CategoryIntegrity
	CategoryTransient
)

// ErrorInfo carries the parsed code and message for an error.
type ErrorInfo struct {
	Code     string
	Category Category
	Message  string
}

// Classify buckets a persistence error without building a full ErrorInfo.
func Classify(err error) Category {
	return ParseError(err, "").Category
}

// ParseError translates low-level persistence errors into a stable code and
// category. Sensitive detail stays out of the message; the category tells the
// caller whether "try again" can possibly help.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Category: CategoryUnknown, Message: "internal server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:     ResourceNotFound,
			Category: CategoryNotFound,
			Message:  notFoundMessage(context),
		}
	}

	// Postgres errors carry SQLSTATE codes when the driver exposes them.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return parseSQLState(string(pqErr.Code), pqErr.Constraint, context)
	}

	errLower := strings.ToLower(err.Error())

	// Fall back to message matching for drivers that do not expose SQLSTATE.
	switch {
	case strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") ||
		strings.Contains(errLower, "unique failed"):
		return parseDuplicateKeyError(errLower, context)

	case strings.Contains(errLower, "foreign key constraint"):
		return ErrorInfo{
			Code:     ResourceConflict,
			Category: CategoryIntegrity,
			Message:  "referenced record does not exist or is still in use",
		}

	case strings.Contains(errLower, "check constraint"):
		return ErrorInfo{
			Code:     ValidationInvalidInput,
			Category: CategoryIntegrity,
			Message:  "value rejected by a data integrity rule",
		}

	case strings.Contains(errLower, "deadlock") || strings.Contains(errLower, "serialization") ||
		strings.Contains(errLower, "database is locked"):
		return ErrorInfo{
			Code:     InternalDatabaseError,
			Category: CategoryTransient,
			Message:  "database is busy, please try again",
		}

	case strings.Contains(errLower, "connection refused") || strings.Contains(errLower, "connection reset") ||
		strings.Contains(errLower, "no such host") || strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "broken pipe"):
		return ErrorInfo{
			Code:     InternalDatabaseError,
			Category: CategoryTransient,
			Message:  "database connection failed, please try again",
		}
	}

	return ErrorInfo{
		Code:     InternalServerError,
		Category: CategoryUnknown,
		Message:  defaultMessage(context),
	}
}

// parseSQLState maps Postgres SQLSTATE classes to categories.
// 23xxx = integrity violations, 40xxx = transaction rollbacks (retryable),
// 08xxx = connection failures (retryable).
func parseSQLState(code, constraint, context string) ErrorInfo {
	switch {
	case code == "23505":
		return parseDuplicateKeyError(strings.ToLower(constraint), context)
	case code == "23503":
		return ErrorInfo{
			Code:     ResourceConflict,
			Category: CategoryIntegrity,
			Message:  "referenced record does not exist or is still in use",
		}
	case code == "23502", code == "23514":
		return ErrorInfo{
			Code:     ValidationInvalidInput,
			Category: CategoryIntegrity,
			Message:  "value rejected by a data integrity rule",
		}
	case strings.HasPrefix(code, "23"):
		return ErrorInfo{
			Code:     InternalDatabaseError,
			Category: CategoryIntegrity,
			Message:  "data integrity violation",
		}
	case code == "40001", code == "40P01":
		return ErrorInfo{
			Code:     InternalDatabaseError,
			Category: CategoryTransient,
			Message:  "database is busy, please try again",
		}
	case strings.HasPrefix(code, "08"), code == "57P03":
		return ErrorInfo{
			Code:     InternalDatabaseError,
			Category: CategoryTransient,
			Message:  "database connection failed, please try again",
		}
	}
	return ErrorInfo{
		Code:     InternalDatabaseError,
		Category: CategoryUnknown,
		Message:  defaultMessage(context),
	}
}

func parseDuplicateKeyError(detail, context string) ErrorInfo {
	switch {
	case strings.Contains(detail, "order_number"):
		return ErrorInfo{
			Code:     OrderDuplicateNumber,
			Category: CategoryIntegrity,
			Message:  "order number already exists",
		}
	case strings.Contains(detail, "telegram_id") && strings.Contains(detail, "cart"):
		return ErrorInfo{
			Code:     ResourceAlreadyExists,
			Category: CategoryIntegrity,
			Message:  "customer already has an active cart",
		}
	case strings.Contains(detail, "telegram_id"):
		return ErrorInfo{
			Code:     ResourceAlreadyExists,
			Category: CategoryIntegrity,
			Message:  "customer is already registered",
		}
	case strings.Contains(detail, "phone"):
		return ErrorInfo{
			Code:     ResourceAlreadyExists,
			Category: CategoryIntegrity,
			Message:  "phone number is already registered",
		}
	case strings.Contains(detail, "idx_cart_line"):
		return ErrorInfo{
			Code:     ResourceAlreadyExists,
			Category: CategoryIntegrity,
			Message:  "cart already contains this line",
		}
	}
	return ErrorInfo{
		Code:     ResourceAlreadyExists,
		Category: CategoryIntegrity,
		Message:  "record already exists",
	}
}

func notFoundMessage(context string) string {
	switch context {
	case "customer":
		return "customer not found"
	case "product":
		return "product not found"
	case "cart":
		return "cart not found"
	case "order":
		return "order not found"
	}
	return "record not found"
}

func defaultMessage(context string) string {
	if context == "" {
		return "internal server error"
	}
	return "failed to process " + context
}
