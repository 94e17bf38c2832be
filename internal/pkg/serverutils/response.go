package serverutils

// ErrorBody is the wire shape produced by the error middleware. Success
// responses use the flat per-route bodies, so only the error side carries
// an envelope.
type ErrorBody struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{
		Success: false,
		Code:    code,
		Message: message,
	}
}
