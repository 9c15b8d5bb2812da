// Package alert delivers user-facing error alerts to the configured notifiers.
package alert

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/copyhub/internal/core"
)

// Severity of an alert
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is a single user-facing notification.
type Alert struct {
	ID       string    `json:"id"`
	Severity Severity  `json:"severity"`
	Source   string    `json:"source"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// FromError builds an error alert. Codes come from core errors; anything else is INTERNAL_ERROR.
func FromError(source string, err error) Alert {
	code := "INTERNAL_ERROR"
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		code = coreErr.Code
	}

	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	return Alert{
		ID:       uuid.NewString(),
		Severity: SeverityError,
		Source:   source,
		Code:     code,
		Message:  msg,
		At:       time.Now().UTC(),
	}
}

// key groups alerts for cooldown purposes.
func (a Alert) key() string {
	return a.Source + "|" + a.Code
}
