// Where: internal/meta/meta.go
// What: Project-local metadata constants.
// Why: Keep naming, env prefixes, and directory layout in one place.
package meta

const (
	// Project Identity
	AppName     = "tvwb"
	Slug        = "tvwb"
	EnvPrefix   = "TVWB"
	ImagePrefix = "tvwb"
	LabelPrefix = "com.tvwb"

	// Directory Layout
	HomeDir  = ".tvwb"
	BuildDir = ".tvwb/build"

	// Service defaults
	DefaultHost   = "0.0.0.0"
	DefaultPort   = 5000
	ContainerPort = 80

	// Artifact names
	DefaultManifest = "tvwb.deps"
	DefaultImageTag = "tvwb:latest"
	ContainerName   = "tvwb-server"
)
