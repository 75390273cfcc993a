// Where: internal/config/credentials.go
// What: GUI and webhook key bootstrapping.
// Why: A bare environment must still come up; missing keys are generated, not fatal.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/tvwb/tradingview-webhooks-bot/internal/constants"
)

// Credentials holds the keys protecting the dashboard and webhook endpoint.
type Credentials struct {
	GUIKey     string
	WebhookKey string
	Generated  bool
}

// CredentialsPath returns the dotenv file where generated keys persist.
func CredentialsPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.env"), nil
}

// EnsureCredentials resolves GUI_KEY and WEBHOOK_KEY.
// Precedence: process environment, then the persisted credentials file,
// then freshly generated values. Anything generated is persisted so
// repeated launches keep serving the same dashboard link and alert key.
// The resolved values are exported into the process environment.
func EnsureCredentials() (Credentials, error) {
	path, err := CredentialsPath()
	if err != nil {
		return Credentials{}, err
	}

	stored := map[string]string{}
	if loaded, err := godotenv.Read(path); err == nil {
		stored = loaded
	}

	creds := Credentials{}
	creds.GUIKey, creds.Generated = resolveKey(constants.EnvGUIKey, stored)
	webhookKey, generated := resolveKey(constants.EnvWebhookKey, stored)
	creds.WebhookKey = webhookKey
	creds.Generated = creds.Generated || generated

	if creds.Generated {
		stored[constants.EnvGUIKey] = creds.GUIKey
		stored[constants.EnvWebhookKey] = creds.WebhookKey
		if err := writeCredentials(path, stored); err != nil {
			return creds, err
		}
	}

	os.Setenv(constants.EnvGUIKey, creds.GUIKey)
	os.Setenv(constants.EnvWebhookKey, creds.WebhookKey)
	return creds, nil
}

// RotateCredentials generates a fresh key pair unconditionally, replacing
// whatever was stored or exported before. The new values are persisted and
// exported the same way EnsureCredentials does.
func RotateCredentials() (Credentials, error) {
	path, err := CredentialsPath()
	if err != nil {
		return Credentials{}, err
	}

	creds := Credentials{
		GUIKey:     generateSecureRandom(32),
		WebhookKey: generateSecureRandom(32),
		Generated:  true,
	}
	stored := map[string]string{
		constants.EnvGUIKey:     creds.GUIKey,
		constants.EnvWebhookKey: creds.WebhookKey,
	}
	if err := writeCredentials(path, stored); err != nil {
		return creds, err
	}

	os.Setenv(constants.EnvGUIKey, creds.GUIKey)
	os.Setenv(constants.EnvWebhookKey, creds.WebhookKey)
	return creds, nil
}

// resolveKey picks the value for one key and reports whether it had to
// be generated.
func resolveKey(name string, stored map[string]string) (string, bool) {
	if value := os.Getenv(name); value != "" {
		return value, false
	}
	if value := stored[name]; value != "" {
		return value, false
	}
	return generateSecureRandom(32), true
}

func writeCredentials(path string, values map[string]string) error {
	content, err := godotenv.Marshal(values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// Key material stays owner-readable only.
	return os.WriteFile(path, []byte(content+"\n"), 0o600)
}

func generateSecureRandom(length int) string {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return "fallback-insecure-key-please-set-env"
	}
	return hex.EncodeToString(bytes)[:length]
}
