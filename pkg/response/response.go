package response

// APIResponseCode classifies API outcomes independently of HTTP status.
type APIResponseCode int

const (
	APIResponseCodeOK         APIResponseCode = 0
	APIResponseCodeBadRequest APIResponseCode = 40000
	APIResponseCodeConflict   APIResponseCode = 40900
	APIResponseCodeError      APIResponseCode = 50000
	APIResponseCodeUpstream   APIResponseCode = 50200
)

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: "ok", Data: data}
}

// ErrorT returns an error response carrying a human-readable message.
func ErrorT[T any](code APIResponseCode, message string, data T) *APIResponse[T] {
	if message == "" {
		message = "payment failed, please try again"
	}
	return &APIResponse[T]{Code: code, Message: message, Data: data}
}
