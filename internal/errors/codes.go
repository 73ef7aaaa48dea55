package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidEmail  ErrorCode = "VALIDATION_005"
	ValidationInvalidDate   ErrorCode = "VALIDATION_006"
)

// Owner error codes (OWNER_*)
const (
	OwnerNotFound      ErrorCode = "OWNER_001"
	OwnerAlreadyExists ErrorCode = "OWNER_002"
	OwnerInvalidID     ErrorCode = "OWNER_003"
)

// Account error codes (ACCOUNT_*)
const (
	AccountNotFound              ErrorCode = "ACCOUNT_001"
	AccountInactive              ErrorCode = "ACCOUNT_002"
	AccountAlreadyExists         ErrorCode = "ACCOUNT_003"
	AccountInvalidNumber         ErrorCode = "ACCOUNT_004"
	AccountOperationNotPermitted ErrorCode = "ACCOUNT_005"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound            ErrorCode = "TRANSACTION_001"
	TransactionInvalidAmount       ErrorCode = "TRANSACTION_002"
	TransactionInsufficientBalance ErrorCode = "TRANSACTION_003"
	TransactionInvalidTransition   ErrorCode = "TRANSACTION_004"
	TransactionInvalidType         ErrorCode = "TRANSACTION_005"
	TransactionMissingSnapshot     ErrorCode = "TRANSACTION_006"
)

// Collateral error codes (COLLATERAL_*)
const (
	CollateralNotFound          ErrorCode = "COLLATERAL_001"
	CollateralInvalidTransition ErrorCode = "COLLATERAL_002"
	CollateralLimitExceeded     ErrorCode = "COLLATERAL_003"
	CollateralNotApproved       ErrorCode = "COLLATERAL_004"
)

// Settlement error codes (SETTLEMENT_*)
const (
	SettlementFailure          ErrorCode = "SETTLEMENT_001"
	SettlementInsufficientFund ErrorCode = "SETTLEMENT_002"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_005"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidEmail:  "Invalid email address format",
	ValidationInvalidDate:   "Invalid date format or range",

	// Owner errors
	OwnerNotFound:      "Owner not found",
	OwnerAlreadyExists: "An owner with this email already exists",
	OwnerInvalidID:     "Invalid owner ID format",

	// Account errors
	AccountNotFound:              "Account not found",
	AccountInactive:              "Account is closed or inactive",
	AccountAlreadyExists:         "Owner already has an account",
	AccountInvalidNumber:         "Invalid account number",
	AccountOperationNotPermitted: "Account operation not permitted",

	// Transaction errors
	TransactionNotFound:            "Transaction not found",
	TransactionInvalidAmount:       "Invalid transaction amount",
	TransactionInsufficientBalance: "Insufficient balance for this transaction",
	TransactionInvalidTransition:   "Transaction cannot change to the requested status",
	TransactionInvalidType:         "Invalid transaction type",
	TransactionMissingSnapshot:     "Transaction has no recorded balance snapshot",

	// Collateral errors
	CollateralNotFound:          "Collateral not found",
	CollateralInvalidTransition: "Collateral cannot change to the requested status",
	CollateralLimitExceeded:     "Requested loan amount exceeds the appraised loan limit",
	CollateralNotApproved:       "Collateral does not back an active loan",

	// Settlement errors
	SettlementFailure:          "External settlement failed; the transaction has been reverted",
	SettlementInsufficientFund: "The fund cannot cover this disbursement",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
