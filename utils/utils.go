package utils

import (
	rndm "math/rand"
	"os"

	log "github.com/sirupsen/logrus"
)

// --- Logging ---

// InitLogger configures the process-wide logrus logger. JSON output so the
// log pipeline can index fields.
func InitLogger() {
	log.SetFormatter(&log.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(log.DebugLevel)
	}
}

// --- Random String and ID Generators ---

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

// GenerateID returns a prefixed entity id, e.g. "g" for gigs, "b" for bids,
// "u" for users.
func GenerateID(prefix string) string {
	return prefix + GenerateRandomString(14)
}
