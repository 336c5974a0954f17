package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 클라이언트는 message 대신 이 코드로 분기함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"  // 로그인 필요
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED" // 토큰 만료
	AuthTokenInvalid = "AUTH_TOKEN_INVALID" // 잘못된 토큰

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // 접근 권한 없음
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY" // 관리자만 가능
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // 소유자만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationError        = "VALIDATION_ERROR"         // 필드 단위 검증 실패
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // 잘못된 ID
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE" // 범위 초과

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 상품 (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND" // 상품 없음

	// ==================== 장바구니 (CART_) ====================
	CartItemNotFound      = "CART_ITEM_NOT_FOUND"     // 장바구니 항목 없음
	CartItemForbidden     = "CART_ITEM_FORBIDDEN"     // 다른 사용자의 항목
	CartInsufficientStock = "CART_INSUFFICIENT_STOCK" // 재고 부족
	CartEmpty             = "CART_EMPTY"              // 빈 장바구니

	// ==================== 주문/결제 (ORDER_, PAYMENT_) ====================
	OrderNotFound         = "ORDER_NOT_FOUND"         // 주문 없음
	PaymentFailed         = "PAYMENT_FAILED"          // 결제 미승인
	PaymentProcessorError = "PAYMENT_PROCESSOR_ERROR" // 결제사 오류
	CheckoutInProgress    = "CHECKOUT_IN_PROGRESS"    // 동일 요청 처리 중

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
)
