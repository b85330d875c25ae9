package utils

import (
	"github.com/google/uuid"
)

// NewRequestID tags one outgoing call so client and backend logs can be
// joined.
func NewRequestID() string {
	return uuid.New().String()
}
