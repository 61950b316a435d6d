package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeInvalidAddress:       "Token address is not a 20-byte hex string",
	CodeInvalidQuoteCurrency: "Unsupported quote currency",

	CodeEthereumConnectionFailed: "Failed to connect to RPC endpoint",
	CodeContractCallFailed:       "Smart contract call failed",
	CodeContractDecodeFailed:     "Failed to decode contract response",
	CodeMetadataFetchFailed:      "Failed to fetch token metadata",

	CodeNoLiquidPath: "No V2 path with liquidity",
	CodePoolNotFound: "No V3 pool found for token pair",

	CodeAggregatorRequestFailed: "Aggregator request failed",
	CodeAggregatorNoPrice:       "Aggregator returned no usable price",

	CodeCircuitOpen: "Circuit breaker is open",
}
