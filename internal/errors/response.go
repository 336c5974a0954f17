package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 표준 에러 응답 구조
type ErrorResponse struct {
	Error   string              `json:"error"`            // 에러 코드 (클라이언트 분기용)
	Message string              `json:"message"`          // 사람이 읽는 메시지
	Detail  string              `json:"detail,omitempty"` // 외부 시스템 원문 상태 등 부가 정보
	Errors  map[string][]string `json:"errors,omitempty"` // 필드별 오류 메시지
}

// RespondWithError 에러 응답 헬퍼
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// RespondWithDetail attaches a raw detail string, e.g. a processor status.
func RespondWithDetail(c *gin.Context, statusCode int, errorCode, message, detail string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
		Detail:  detail,
	})
}

// 자주 사용하는 에러 응답 단축 함수들

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "User not authenticated"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, errorCode string, message string) {
	if message == "" {
		message = "Forbidden"
	}
	if errorCode == "" {
		errorCode = AuthzForbidden
	}
	RespondWithError(c, http.StatusForbidden, errorCode, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func BadGateway(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadGateway, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Something went wrong. Please try again later"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// Unprocessable 422 응답. fields 는 field -> messages 형태
func Unprocessable(c *gin.Context, errorCode string, message string, fields map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   errorCode,
		Message: message,
		Errors:  fields,
	})
}
