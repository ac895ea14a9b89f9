package model

import "errors"

// User-facing messages shared by the controllers.
const (
	MsgInvalidPDF    = "Please upload a valid PDF file."
	MsgAuthFailed    = "Authentication failed"
	MsgUploadFailed  = "Error processing file"
	MsgHistoryFailed = "Failed to fetch history"
)

// ValidationError is a locally detected input problem. It never reaches
// the network layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return "validation: " + e.Field + ": " + e.Message
}

// UserMessage implements the userMessenger contract.
func (e *ValidationError) UserMessage() string {
	return e.Message
}

type userMessenger interface {
	UserMessage() string
}

// UserMessage returns the first non-empty user-facing message found in
// err's chain, or fallback.
func UserMessage(err error, fallback string) string {
	for err != nil {
		if um, ok := err.(userMessenger); ok {
			if msg := um.UserMessage(); msg != "" {
				return msg
			}
		}
		err = errors.Unwrap(err)
	}
	return fallback
}
