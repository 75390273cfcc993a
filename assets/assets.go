// Where: assets/assets.go
// What: Embedded templates and schemas for the CLI and server.
// Why: Keep scaffolding, recipe, and dashboard assets inside the binary.
package assets

import "embed"

//go:embed templates/*.tmpl
var TemplatesFS embed.FS

//go:embed web/*.tmpl
var WebFS embed.FS

//go:embed schemas/*.yaml
var SchemasFS embed.FS
