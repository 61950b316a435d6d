package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Price resolution error codes
const (
	// Caller input
	CodeInvalidAddress       Code = "INVALID_ADDRESS"
	CodeInvalidQuoteCurrency Code = "INVALID_QUOTE_CURRENCY"

	// Chain access
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeContractCallFailed       Code = "CONTRACT_CALL_FAILED"
	CodeContractDecodeFailed     Code = "CONTRACT_DECODE_FAILED"
	CodeMetadataFetchFailed      Code = "METADATA_FETCH_FAILED"

	// Venue outcomes
	CodeNoLiquidPath Code = "NO_LIQUID_PATH_NOT_FOUND"
	CodePoolNotFound Code = "V3_POOL_NOT_FOUND"

	// Aggregator
	CodeAggregatorRequestFailed Code = "AGGREGATOR_REQUEST_FAILED"
	CodeAggregatorNoPrice       Code = "AGGREGATOR_PRICE_NOT_FOUND"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
