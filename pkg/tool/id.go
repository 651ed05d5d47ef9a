package tool

import "github.com/google/uuid"

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateTranID returns a fresh gateway transaction id. The gateway echoes it
// back on the callback, so it must be unique per checkout attempt.
func GenerateTranID() string {
	return "RTN-" + uuid.Must(uuid.NewV7()).String()
}
