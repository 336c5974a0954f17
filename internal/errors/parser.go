package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자에게 노출 가능한 메시지
}

// ParseError maps an unexpected repository error to a safe code and
// message. Driver text never reaches the client.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	errLower := strings.ToLower(err.Error())

	// Unique constraint violation (23505 / sqlite UNIQUE)
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return ErrorInfo{Code: ResourceConflict, Message: "The resource was modified concurrently. Please retry"}
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errLower, "foreign key constraint") {
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record no longer exists"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{Code: InternalExternalAPI, Message: "An upstream service is unavailable. Please try again later"}
	}

	return ErrorInfo{Code: InternalDatabaseError, Message: defaultMessage(context)}
}

func notFoundMessage(context string) string {
	ctx := strings.ToLower(context)
	switch {
	case strings.Contains(ctx, "order"):
		return "Order not found"
	case strings.Contains(ctx, "product"):
		return "Product not found"
	case strings.Contains(ctx, "cart"):
		return "Cart item not found"
	default:
		return "The requested resource was not found"
	}
}

func defaultMessage(context string) string {
	ctx := strings.ToLower(context)
	switch {
	case strings.Contains(ctx, "checkout"):
		return "Checkout could not be completed. Please try again later"
	case strings.Contains(ctx, "cart"):
		return "Cart could not be updated. Please try again later"
	default:
		return "Something went wrong. Please try again later"
	}
}

// ParseAndRespond 에러를 파싱하여 응답 반환 (컨트롤러용 헬퍼)
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
