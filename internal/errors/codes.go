package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. The storefront maps these to copy.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthWeakPassword       = "AUTH_WEAK_PASSWORD"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (PRODUCT_) ====================
	ProductNotFound        = "PRODUCT_NOT_FOUND"
	ProductVariantNotFound = "PRODUCT_VARIANT_NOT_FOUND"
	ProductOutOfStock      = "PRODUCT_OUT_OF_STOCK"

	// ==================== Cart (CART_) ====================
	CartSessionInvalid = "CART_SESSION_INVALID"
	CartItemNotFound   = "CART_ITEM_NOT_FOUND"
	CartEmpty          = "CART_EMPTY"

	// ==================== Bundles (BUNDLE_) ====================
	BundleNotFound     = "BUNDLE_NOT_FOUND"
	BundleNotEligible  = "BUNDLE_NOT_ELIGIBLE"
	BundleInvalidOffer = "BUNDLE_INVALID_OFFER"
	BundleSlugExists   = "BUNDLE_SLUG_EXISTS"

	// ==================== Partners (PARTNER_) ====================
	PartnerInvalidIBAN    = "PARTNER_INVALID_IBAN"
	PartnerAlreadyApplied = "PARTNER_ALREADY_APPLIED"
	PartnerNotFound       = "PARTNER_NOT_FOUND"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Throttling (RATE_) ====================
	RateLimited = "RATE_LIMITED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
