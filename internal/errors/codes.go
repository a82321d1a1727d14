package errors

// Error code constants, format: CATEGORY_SPECIFIC_DETAIL.
// The dashboard frontend maps these codes to display messages; the category
// also decides whether an operation is worth retrying (see parser.go).

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized   = "AUTH_UNAUTHORIZED"    // login required
	AuthTokenExpired   = "AUTH_TOKEN_EXPIRED"   // session token expired
	AuthTokenInvalid   = "AUTH_TOKEN_INVALID"   // malformed or tampered token
	AuthLoginRejected  = "AUTH_LOGIN_REJECTED"  // Telegram login hash check failed
	AuthzForbidden     = "AUTHZ_FORBIDDEN"      // no access
	AuthzAdminOnly     = "AUTHZ_ADMIN_ONLY"     // admin-only operation

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidPhone  = "VALIDATION_INVALID_PHONE"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Cart (CART_) ====================
	CartEmpty        = "CART_EMPTY"          // nothing to deliver / checkout
	CartItemNotFound = "CART_ITEM_NOT_FOUND" // line missing for quantity update

	// ==================== Orders (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderDuplicateNumber   = "ORDER_DUPLICATE_NUMBER"   // order number uniqueness collision
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION" // status move not in transition table
	OrderInvalidStatus     = "ORDER_INVALID_STATUS"     // status outside the known set

	// ==================== Products (PRODUCT_) ====================
	ProductNotFound     = "PRODUCT_NOT_FOUND"
	ProductInactive     = "PRODUCT_INACTIVE"
	ProductReferenced   = "PRODUCT_REFERENCED" // hard delete blocked by order history

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalRetryExhausted = "INTERNAL_RETRY_EXHAUSTED" // transient failure persisted past all attempts
)
