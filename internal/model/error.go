package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ValidationErrorResponse is returned when a request body fails field validation.
type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"

	ErrCodeCategoryNotFound = "CATEGORY_NOT_FOUND"
	ErrCodeInvalidParent    = "INVALID_PARENT_CATEGORY"
	ErrCodeSlugExists       = "SLUG_EXISTS"

	ErrCodeProductNotFound = "PRODUCT_NOT_FOUND"
	ErrCodeProductInactive = "PRODUCT_INACTIVE"
	ErrCodeSKUExists       = "SKU_EXISTS"
	ErrCodeInvalidPrice    = "INVALID_PRICE"
	ErrCodeInvalidStock    = "INVALID_STOCK"

	ErrCodeCartItemNotFound = "CART_ITEM_NOT_FOUND"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeCartEmpty        = "CART_EMPTY"

	ErrCodeOrderNotFound         = "ORDER_NOT_FOUND"
	ErrCodeInvalidAddress        = "INVALID_SHIPPING_ADDRESS"
	ErrCodeInvalidStatus         = "INVALID_STATUS"
	ErrCodeInvalidTransition     = "INVALID_STATUS_TRANSITION"
	ErrCodeOrderNotCancellable   = "ORDER_NOT_CANCELLABLE"
	ErrCodeDuplicateSubmission   = "DUPLICATE_SUBMISSION"
	ErrCodePaymentNotFound       = "PAYMENT_NOT_FOUND"
	ErrCodePaymentExists         = "PAYMENT_EXISTS"
	ErrCodeOrderNotPayable       = "ORDER_NOT_PAYABLE"
	ErrCodeInvalidPaymentMethod  = "INVALID_PAYMENT_METHOD"
	ErrCodeTransactionIDRequired = "TRANSACTION_ID_REQUIRED"
	ErrCodePaymentNotPending     = "PAYMENT_NOT_PENDING"
	ErrCodePaymentNotRefundable  = "PAYMENT_NOT_REFUNDABLE"
	ErrCodeInvalidRefund         = "INVALID_REFUND"
	ErrCodeRefundReasonRequired  = "REFUND_REASON_REQUIRED"
	ErrCodeUnknownProvider       = "UNKNOWN_PROVIDER"

	ErrCodeReviewNotFound      = "REVIEW_NOT_FOUND"
	ErrCodeAlreadyReviewed     = "ALREADY_REVIEWED"
	ErrCodeNotVerifiedPurchase = "NOT_VERIFIED_PURCHASE"
	ErrCodeInvalidRating       = "INVALID_RATING"
	ErrCodeOwnReviewVote       = "OWN_REVIEW_VOTE"
	ErrCodeAlreadyVoted        = "ALREADY_VOTED"
	ErrCodeNotVoted            = "NOT_VOTED"
)

// ErrorKind classifies a DomainError for transport mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindForbidden
	KindConflict
)

// Domain errors for business logic
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// formatted errors still match their sentinel with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Validationf creates a validation error with a formatted message.
func Validationf(code, format string, args ...any) *DomainError {
	return NewDomainError(KindValidation, code, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrForbidden = NewDomainError(KindForbidden, ErrCodeForbidden, "You do not have permission to perform this action")

	ErrCategoryNotFound = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrInvalidParent    = NewDomainError(KindValidation, ErrCodeInvalidParent, "Parent category does not exist or would create a cycle")
	ErrSlugExists       = NewDomainError(KindConflict, ErrCodeSlugExists, "A category with this name already exists")

	ErrProductNotFound = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrProductInactive = NewDomainError(KindValidation, ErrCodeProductInactive, "Product is not available")
	ErrSKUExists       = NewDomainError(KindConflict, ErrCodeSKUExists, "A product with this SKU already exists")
	ErrInvalidPrice    = NewDomainError(KindValidation, ErrCodeInvalidPrice, "Price cannot be negative")
	ErrInvalidStock    = NewDomainError(KindValidation, ErrCodeInvalidStock, "Stock quantity cannot be negative")

	ErrCartItemNotFound = NewDomainError(KindNotFound, ErrCodeCartItemNotFound, "Cart item not found")
	ErrCartItemNotOwned = NewDomainError(KindForbidden, ErrCodeForbidden, "Cart item belongs to another user")
	ErrInvalidQuantity  = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be between 1 and 999")
	ErrCartEmpty        = NewDomainError(KindValidation, ErrCodeCartEmpty, "Cart is empty")

	ErrOrderNotFound         = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrInvalidAddress        = NewDomainError(KindValidation, ErrCodeInvalidAddress, "Please provide a complete shipping address")
	ErrInvalidStatus         = NewDomainError(KindValidation, ErrCodeInvalidStatus, "Invalid status value")
	ErrInvalidTransition     = NewDomainError(KindValidation, ErrCodeInvalidTransition, "Invalid status transition")
	ErrOrderNotCancellable   = NewDomainError(KindValidation, ErrCodeOrderNotCancellable, "Order cannot be cancelled")
	ErrDuplicateSubmission   = NewDomainError(KindConflict, ErrCodeDuplicateSubmission, "This request has already been submitted")
	ErrPaymentNotFound       = NewDomainError(KindNotFound, ErrCodePaymentNotFound, "Payment not found")
	ErrPaymentExists         = NewDomainError(KindValidation, ErrCodePaymentExists, "Payment already exists for this order")
	ErrOrderNotPayable       = NewDomainError(KindValidation, ErrCodeOrderNotPayable, "Order is not in a payable state")
	ErrInvalidPaymentMethod  = NewDomainError(KindValidation, ErrCodeInvalidPaymentMethod, "Invalid payment method")
	ErrTransactionIDRequired = NewDomainError(KindValidation, ErrCodeTransactionIDRequired, "Transaction ID is required for completed payments")
	ErrPaymentNotPending     = NewDomainError(KindValidation, ErrCodePaymentNotPending, "Payment is not pending")
	ErrPaymentNotRefundable  = NewDomainError(KindValidation, ErrCodePaymentNotRefundable, "Only completed payments can be refunded")
	ErrInvalidRefund         = NewDomainError(KindValidation, ErrCodeInvalidRefund, "Refund amount must be greater than zero and not exceed the payment amount")
	ErrRefundReasonRequired  = NewDomainError(KindValidation, ErrCodeRefundReasonRequired, "A refund reason is required")
	ErrUnknownProvider       = NewDomainError(KindNotFound, ErrCodeUnknownProvider, "Unknown payment provider")

	ErrReviewNotFound      = NewDomainError(KindNotFound, ErrCodeReviewNotFound, "Review not found")
	ErrAlreadyReviewed     = NewDomainError(KindValidation, ErrCodeAlreadyReviewed, "You have already reviewed this product")
	ErrNotVerifiedPurchase = NewDomainError(KindValidation, ErrCodeNotVerifiedPurchase, "You can only review products from delivered orders")
	ErrInvalidRating       = NewDomainError(KindValidation, ErrCodeInvalidRating, "Rating must be between 1 and 5")
	ErrOwnReviewVote       = NewDomainError(KindValidation, ErrCodeOwnReviewVote, "You cannot vote on your own review")
	ErrAlreadyVoted        = NewDomainError(KindValidation, ErrCodeAlreadyVoted, "You have already marked this review as helpful")
	ErrNotVoted            = NewDomainError(KindValidation, ErrCodeNotVoted, "You have not marked this review as helpful")
)
