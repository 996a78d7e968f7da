package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
)

// The session encryption key must decode to exactly 32 bytes for AES-256-GCM.
const sessionKeyHexLen = 64

func main() {
	hexLen := flag.Int("hex-len", 64, "random hex length for the JWT secrets (must be even)")
	flag.Parse()

	if err := validateInputs(*hexLen); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	accessSecret, refreshSecret, sessionKey, err := buildSecrets(*hexLen)
	if err != nil {
		log.Fatalf("failed to generate secrets: %v", err)
	}

	fmt.Println("Generated auth secrets")
	fmt.Printf("JWT_ACCESS_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
	fmt.Printf("SESSION_ENCRYPTION_KEY=%s\n", sessionKey)
}

func validateInputs(hexLen int) error {
	if hexLen <= 0 || hexLen%2 != 0 {
		return fmt.Errorf("hex-len %d must be positive and even", hexLen)
	}
	return nil
}

func buildSecrets(hexLen int) (string, string, string, error) {
	accessSecret, err := generateRandomHex(hexLen)
	if err != nil {
		return "", "", "", err
	}
	refreshSecret, err := generateRandomHex(hexLen)
	if err != nil {
		return "", "", "", err
	}
	sessionKey, err := generateRandomHex(sessionKeyHexLen)
	if err != nil {
		return "", "", "", err
	}
	return accessSecret, refreshSecret, sessionKey, nil
}

func generateRandomHex(n int) (string, error) {
	b := make([]byte, n/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
