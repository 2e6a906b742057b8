package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ID prefixes for generated identifiers.
const (
	ItemIDPrefix        = "itm"
	TransactionIDPrefix = "txn"
)

// NewID returns "<prefix>_<uuidv7>". A version 7 UUID combines a millisecond
// clock reading with random bits, so identifiers sort by creation time and do
// not collide within a process.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.Must(uuid.NewV7()))
}
