package tradeapi

import (
	"encoding/json"
	"fmt"
)

// APIError is an error reported by the trade API in the response body.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("trade api error %d: %s", e.Code, e.Message)
	}
	return "trade api error: " + e.Message
}

type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

type errorDetail struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// decodeError extracts an {"error": ...} body. The error value may be a string or an object.
func decodeError(raw []byte) *APIError {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Error) == 0 || string(env.Error) == "null" {
		return nil
	}

	var msg string
	if err := json.Unmarshal(env.Error, &msg); err == nil {
		return &APIError{Message: msg}
	}

	var detail errorDetail
	if err := json.Unmarshal(env.Error, &detail); err != nil {
		return &APIError{Message: string(env.Error)}
	}
	if detail.Message == "" {
		detail.Message = detail.Error
	}
	return &APIError{Code: detail.Code, Message: detail.Message}
}
