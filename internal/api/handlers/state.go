package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chisomo-phiri/studyhub/internal/utils"
)

// GenerateState creates a random state string containing optional metadata (e.g., "login" or "register")
func GenerateState(data map[string]string) (string, error) {
	randomPart, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	// Marshal metadata as JSON and encode
	payloadBytes, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal state data: %w", err)
	}
	payloadPart := base64.RawURLEncoding.EncodeToString(payloadBytes)

	// Final format: randomPart.payloadPart
	return fmt.Sprintf("%s.%s", randomPart, payloadPart), nil
}

// DecodeState decodes the metadata back from the state string
func DecodeState(state string) (map[string]string, error) {
	parts := strings.Split(state, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid state format")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode state payload: %w", err)
	}

	var data map[string]string
	if err := json.Unmarshal(payloadBytes, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state JSON: %w", err)
	}

	return data, nil
}
