package models

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID generates a prefixed business ID like "veh-<uuid>".
func NewID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
