package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Identity is the signed-in user stored on disk between runs.
type Identity struct {
	Email      string    `json:"email"`
	UserID     string    `json:"user_id,omitempty"`
	SignedInAt time.Time `json:"signed_in_at"`
}

// LoadIdentity reads the identity file. Returns nil, nil when it does not exist.
func LoadIdentity(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("invalid session file: %w", err)
	}
	if id.Email == "" {
		return nil, fmt.Errorf("invalid session file: missing email")
	}
	return &id, nil
}

// SaveIdentity writes the identity file with mode 0600.
func SaveIdentity(path string, id Identity) error {
	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// RemoveIdentity deletes the identity file. A missing file is not an error.
func RemoveIdentity(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
