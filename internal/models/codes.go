package models

// Error codes carried in ErrorInfo.Code.
const (
	CodeMissingRequest       = "missing_request"
	CodeBadRequestJSON       = "bad_request_json"
	CodeInvalidMethod        = "invalid_method"
	CodeMethodNotImplemented = "method_not_implemented"
	CodeInvalidParams        = "invalid_params"
	CodeGatewayUnavailable   = "openclaw_gateway_unavailable"
	CodeOpenClawUnavailable  = "openclaw_unavailable"
	CodeUnhandledException   = "unhandled_exception"
)
