// Package envutil provides helper functions for environment variable handling.
package envutil

import (
	"os"

	"github.com/tvwb/tradingview-webhooks-bot/internal/meta"
)

// HostEnvKey constructs a host-level environment variable name
// by combining the project prefix with the given suffix.
// Example: HostEnvKey("PORT") returns "TVWB_PORT"
func HostEnvKey(suffix string) string {
	return meta.EnvPrefix + "_" + suffix
}

// GetHostEnv retrieves a host-level environment variable.
// Example: GetHostEnv("PORT") returns the value of TVWB_PORT
func GetHostEnv(suffix string) string {
	return os.Getenv(HostEnvKey(suffix))
}

// SetHostEnv sets a host-level environment variable.
// Example: SetHostEnv("PORT", "8080") sets TVWB_PORT=8080
func SetHostEnv(suffix, value string) {
	_ = os.Setenv(HostEnvKey(suffix), value)
}
