package auth

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
)

var adminUsername string
var adminPassword string // Plain text, checked against env-configured values

// sessionToken is regenerated on every process start, so a restart
// invalidates all outstanding sessions.
var sessionToken string

// LoadAdminCredentials loads the admin username and password from environment
// variables and mints the process session token. It logs a warning if the
// credentials are not set.
func LoadAdminCredentials() {
	adminUsername = os.Getenv("ADMIN_USERNAME")
	adminPassword = os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" {
		log.Println("WARNING: ADMIN_USERNAME environment variable not set.")
	}
	if adminPassword == "" {
		log.Println("WARNING: ADMIN_PASSWORD environment variable not set.")
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		log.Fatalf("FATAL: could not generate session token: %v", err)
	}
	sessionToken = hex.EncodeToString(tokenBytes)
}
