// Where: internal/manifest/resolver.go
// What: Requirement resolution against the host.
// Why: Catch a broken runtime at preparation time, not on the first webhook.
package manifest

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Failure records one requirement that could not be resolved and why.
type Failure struct {
	Requirement Requirement
	Err         error
}

// ResolutionError aggregates every requirement that failed to resolve.
// Preparation reports all failures at once instead of stopping at the first.
type ResolutionError struct {
	Failures []Failure
}

// Error lists each failed requirement with its diagnostic.
func (e *ResolutionError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Requirement, f.Err))
	}
	return "dependency resolution failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the underlying causes for errors.Is/As.
func (e *ResolutionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Resolution describes where a requirement was satisfied.
type Resolution struct {
	Requirement Requirement
	Detail      string
}

// ImagePuller pulls a container image. Implemented by the docker package;
// faked in tests.
type ImagePuller interface {
	Pull(ctx context.Context, ref string) error
}

// Resolver checks requirements against the host. The probe functions are
// variables so tests can substitute deterministic behavior.
type Resolver struct {
	LookPath     func(name string) (string, error)
	VersionProbe func(ctx context.Context, path string) (string, error)
	Puller       ImagePuller
}

// NewResolver builds a Resolver with real host probes.
func NewResolver(puller ImagePuller) *Resolver {
	return &Resolver{
		LookPath:     exec.LookPath,
		VersionProbe: probeVersion,
		Puller:       puller,
	}
}

// Resolve checks every requirement and returns one Resolution per entry.
// When anything fails, the returned error is a *ResolutionError covering
// all failures.
func (r *Resolver) Resolve(ctx context.Context, m Manifest) ([]Resolution, error) {
	var resolved []Resolution
	var failures []Failure

	for _, req := range m.Requirements {
		var res Resolution
		var err error
		switch req.Kind {
		case KindImage:
			res, err = r.resolveImage(ctx, req)
		default:
			res, err = r.resolveBinary(ctx, req)
		}
		if err != nil {
			failures = append(failures, Failure{Requirement: req, Err: err})
			continue
		}
		resolved = append(resolved, res)
	}

	if len(failures) > 0 {
		return nil, &ResolutionError{Failures: failures}
	}
	return resolved, nil
}

func (r *Resolver) resolveBinary(ctx context.Context, req Requirement) (Resolution, error) {
	if r.LookPath == nil {
		return Resolution{}, fmt.Errorf("no binary resolver configured")
	}
	path, err := r.LookPath(req.Name)
	if err != nil {
		return Resolution{}, fmt.Errorf("not found on PATH")
	}
	if req.Version == "" {
		return Resolution{Requirement: req, Detail: path}, nil
	}

	if r.VersionProbe == nil {
		return Resolution{}, fmt.Errorf("no version probe configured")
	}
	output, err := r.VersionProbe(ctx, path)
	if err != nil {
		return Resolution{}, fmt.Errorf("version probe failed: %w", err)
	}
	found := extractVersion(output)
	if found == "" {
		return Resolution{}, fmt.Errorf("no version in probe output %q", strings.TrimSpace(output))
	}
	if err := checkVersion(req, found); err != nil {
		return Resolution{}, err
	}
	return Resolution{Requirement: req, Detail: fmt.Sprintf("%s (%s)", path, found)}, nil
}

func (r *Resolver) resolveImage(ctx context.Context, req Requirement) (Resolution, error) {
	if r.Puller == nil {
		return Resolution{}, fmt.Errorf("no image resolver configured")
	}
	if req.Operator == ">=" {
		return Resolution{}, fmt.Errorf("image requirements must pin an exact version")
	}
	ref := req.Name
	if req.Version != "" {
		ref = req.Name + ":" + req.Version
	}
	if err := r.Puller.Pull(ctx, ref); err != nil {
		return Resolution{}, fmt.Errorf("pull failed: %w", err)
	}
	return Resolution{Requirement: req, Detail: "pulled " + ref}, nil
}

// probeVersion runs `<path> --version` and returns its combined output.
func probeVersion(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("run %s --version: %w", path, err)
	}
	return string(output), nil
}

var versionPattern = regexp.MustCompile(`[0-9]+(\.[0-9]+){0,2}`)

// extractVersion pulls the first dotted number out of probe output.
func extractVersion(output string) string {
	return versionPattern.FindString(output)
}

// checkVersion compares the found version against the declared constraint.
// ">=" uses semver ordering with missing segments coerced to zero; "=="
// requires the declared segments to prefix the found version, so "24"
// accepts 24.0.7.
func checkVersion(req Requirement, found string) error {
	switch req.Operator {
	case ">=":
		want, err := semver.NewVersion(req.Version)
		if err != nil {
			return fmt.Errorf("invalid version constraint %q: %w", req.Version, err)
		}
		have, err := semver.NewVersion(found)
		if err != nil {
			return fmt.Errorf("unparsable version %q: %w", found, err)
		}
		if have.LessThan(want) {
			return fmt.Errorf("version %s is below required %s", found, req.Version)
		}
	case "==":
		if !segmentsPrefix(req.Version, found) {
			return fmt.Errorf("version %s does not match required %s", found, req.Version)
		}
	}
	return nil
}

func segmentsPrefix(want, found string) bool {
	wantParts := strings.Split(want, ".")
	foundParts := strings.Split(found, ".")
	if len(wantParts) > len(foundParts) {
		return false
	}
	for i, part := range wantParts {
		if foundParts[i] != part {
			return false
		}
	}
	return true
}
