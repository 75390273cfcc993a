// Where: internal/manifest/manifest.go
// What: Dependency manifest parsing.
// Why: The runtime declares its host prerequisites in one reviewable file.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Kind classifies how a requirement is resolved.
type Kind string

const (
	// KindBinary is an executable that must be on PATH.
	KindBinary Kind = "bin"
	// KindImage is a container image that must be pullable.
	KindImage Kind = "image"
)

// Requirement is one declared dependency.
// Version carries the raw constraint text ("24", "1.2.3"); Operator is
// "==" or ">=". Both are empty for unversioned requirements.
type Requirement struct {
	Kind     Kind
	Name     string
	Operator string
	Version  string
}

// String renders the requirement the way the manifest spells it.
func (r Requirement) String() string {
	name := r.Name
	if r.Kind == KindImage {
		name = string(KindImage) + ":" + name
	}
	if r.Version == "" {
		return name
	}
	return name + r.Operator + r.Version
}

// Manifest is the parsed dependency declaration.
type Manifest struct {
	Path         string
	Requirements []Requirement
}

// Load reads a manifest from disk. A missing file yields an empty
// manifest: declaring nothing is valid.
func Load(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{Path: path}, nil
		}
		return Manifest{}, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return Manifest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse reads requirements one per line. Blank lines and lines starting
// with # are skipped. Grammar per line:
//
//	[kind:]name[==version|>=version]
//
// where kind is "bin" (default) or "image".
func Parse(r io.Reader) (Manifest, error) {
	var m Manifest
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		req, err := parseLine(line)
		if err != nil {
			return Manifest{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		m.Requirements = append(m.Requirements, req)
	}
	if err := scanner.Err(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func parseLine(line string) (Requirement, error) {
	req := Requirement{Kind: KindBinary}

	if kind, rest, ok := strings.Cut(line, ":"); ok {
		switch Kind(kind) {
		case KindBinary, KindImage:
			req.Kind = Kind(kind)
			line = strings.TrimSpace(rest)
		default:
			return Requirement{}, fmt.Errorf("unknown requirement kind %q", kind)
		}
	}

	for _, op := range []string{">=", "=="} {
		if name, version, ok := strings.Cut(line, op); ok {
			req.Name = strings.TrimSpace(name)
			req.Operator = op
			req.Version = strings.TrimSpace(version)
			if req.Version == "" {
				return Requirement{}, fmt.Errorf("requirement %q has an empty version", req.Name)
			}
			break
		}
	}
	if req.Operator == "" {
		req.Name = line
	}
	if req.Name == "" {
		return Requirement{}, fmt.Errorf("empty requirement name")
	}
	if strings.ContainsAny(req.Name, " \t") {
		return Requirement{}, fmt.Errorf("requirement name %q contains whitespace", req.Name)
	}
	return req, nil
}
