package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new random identifier. Bid ids, ledger entry ids and
// settlement references all come from here.
func GenerateID() string {
	return uuid.New().String()
}
