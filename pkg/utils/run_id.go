package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateRunID creates a human-readable identifier for one scheduler run.
// Format: {mode}-{8charHexUUID}
//
// Example:
//   - Input: mode="simulate"
//   - Output: "simulate-a3f8e2b1"
func GenerateRunID(mode string) string {
	return mode + "-" + generateShortUUID()
}

// GenerateSessionID identifies one credential search.
// Format: search-d{dockID}-t{timestep}-{8charHexUUID}
func GenerateSessionID(dockID, timestep int) string {
	return fmt.Sprintf("search-d%d-t%d-%s", dockID, timestep, generateShortUUID())
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	// Remove hyphens and take first 8 characters
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
