package utils

import (
	"crypto/sha256"
	"fmt"
)

// GetContentHash returns a quoted strong ETag for a response body.
func GetContentHash(body []byte) string {
	h := sha256.Sum256(body)
	return fmt.Sprintf("\"%x\"", h[:16])
}
