// Where: internal/app/prepare_test.go
// What: Tests for the prepare command.
// Why: Preparation must fail loudly on unresolvable dependencies and list every failure.
package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tvwb/tradingview-webhooks-bot/internal/config"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
	"github.com/tvwb/tradingview-webhooks-bot/internal/manifest"
)

type fakeResolver struct {
	resolutions []manifest.Resolution
	err         error
	calls       int
	manifests   []manifest.Manifest
}

func (f *fakeResolver) Resolve(_ context.Context, m manifest.Manifest) ([]manifest.Resolution, error) {
	f.calls++
	f.manifests = append(f.manifests, m)
	if f.err != nil {
		return nil, f.err
	}
	return f.resolutions, nil
}

func TestRunPrepareWithoutManifest(t *testing.T) {
	home := testHome(t)

	resolver := &fakeResolver{}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Prepare: PrepareDeps{Resolver: resolver}}

	missing := filepath.Join(t.TempDir(), "tvwb.deps")
	exitCode := Run([]string{"prepare", "--manifest", missing}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if resolver.calls != 0 {
		t.Fatalf("expected resolver not called for empty manifest, got %d", resolver.calls)
	}
	if !strings.Contains(out.String(), "No manifest entries") {
		t.Fatalf("expected empty manifest notice, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Environment ready") {
		t.Fatalf("expected ready message, got %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(home, "settings.yaml")); err != nil {
		t.Fatalf("expected settings file created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "config.yaml")); err != nil {
		t.Fatalf("expected config file created: %v", err)
	}
}

func TestRunPrepareResolvesManifest(t *testing.T) {
	testHome(t)

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "tvwb.deps")
	content := "# host prerequisites\nbin:docker>=24\nimage:redis==7.2\n"
	if err := os.WriteFile(manifestPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	resolver := &fakeResolver{resolutions: []manifest.Resolution{
		{Requirement: manifest.Requirement{Kind: manifest.KindBinary, Name: "docker", Operator: ">=", Version: "24"}, Detail: "/usr/bin/docker (27.1.0)"},
		{Requirement: manifest.Requirement{Kind: manifest.KindImage, Name: "redis", Operator: "==", Version: "7.2"}, Detail: "pulled redis:7.2"},
	}}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Prepare: PrepareDeps{Resolver: resolver}}

	exitCode := Run([]string{"prepare", "--manifest", manifestPath}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if resolver.calls != 1 {
		t.Fatalf("expected resolver called once, got %d", resolver.calls)
	}
	if got := len(resolver.manifests[0].Requirements); got != 2 {
		t.Fatalf("expected 2 parsed requirements, got %d", got)
	}
	if !strings.Contains(out.String(), "/usr/bin/docker") {
		t.Fatalf("expected resolution detail, got %q", out.String())
	}
	if !strings.Contains(out.String(), "pulled redis:7.2") {
		t.Fatalf("expected image resolution detail, got %q", out.String())
	}
}

func TestRunPrepareReportsEveryFailure(t *testing.T) {
	testHome(t)

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "tvwb.deps")
	if err := os.WriteFile(manifestPath, []byte("bin:ghost-tool\nimage:no-such-image\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	resolver := &fakeResolver{err: &manifest.ResolutionError{Failures: []manifest.Failure{
		{Requirement: manifest.Requirement{Kind: manifest.KindBinary, Name: "ghost-tool"}, Err: errors.New("not found on PATH")},
		{Requirement: manifest.Requirement{Kind: manifest.KindImage, Name: "no-such-image"}, Err: errors.New("pull failed")},
	}}}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Prepare: PrepareDeps{Resolver: resolver}}

	exitCode := Run([]string{"prepare", "--manifest", manifestPath}, deps)
	if exitCode == 0 {
		t.Fatalf("expected non-zero exit code for unresolvable dependencies")
	}
	if !strings.Contains(out.String(), "ghost-tool") {
		t.Fatalf("expected first failure listed, got %q", out.String())
	}
	if !strings.Contains(out.String(), "no-such-image") {
		t.Fatalf("expected second failure listed, got %q", out.String())
	}
	if !strings.Contains(out.String(), "dependency resolution failed") {
		t.Fatalf("expected aggregate error, got %q", out.String())
	}
}

func TestRunPrepareProvisionsConfiguredJournal(t *testing.T) {
	home := testHome(t)

	cfg := config.DefaultGlobalConfig()
	cfg.Journal.Backend = "dynamodb"
	cfg.Journal.Endpoint = "http://localhost:8000"
	if err := config.SaveGlobalConfig(filepath.Join(home, "config.yaml"), cfg); err != nil {
		t.Fatalf("write config: %v", err)
	}

	provisions := 0
	var captured journal.Options
	var out bytes.Buffer
	deps := Dependencies{
		Out: &out,
		Prepare: PrepareDeps{
			Resolver: &fakeResolver{},
			Provision: func(_ context.Context, opts journal.Options, _ io.Writer) error {
				provisions++
				captured = opts
				return nil
			},
		},
	}

	missing := filepath.Join(t.TempDir(), "tvwb.deps")
	exitCode := Run([]string{"prepare", "--manifest", missing}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if provisions != 1 {
		t.Fatalf("expected one provision call, got %d", provisions)
	}
	if captured.Backend != "dynamodb" || captured.Endpoint != "http://localhost:8000" {
		t.Fatalf("unexpected provision options: %+v", captured)
	}
}

func TestRunPrepareSkipsProvisionForMemoryBackend(t *testing.T) {
	testHome(t)

	provisions := 0
	var out bytes.Buffer
	deps := Dependencies{
		Out: &out,
		Prepare: PrepareDeps{
			Resolver: &fakeResolver{},
			Provision: func(context.Context, journal.Options, io.Writer) error {
				provisions++
				return nil
			},
		},
	}

	missing := filepath.Join(t.TempDir(), "tvwb.deps")
	exitCode := Run([]string{"prepare", "--manifest", missing}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if provisions != 0 {
		t.Fatalf("expected no provision call for memory backend, got %d", provisions)
	}
}

func TestRunPrepareGenerateKeysRotates(t *testing.T) {
	home := testHome(t)

	var out bytes.Buffer
	deps := Dependencies{Out: &out, Prepare: PrepareDeps{Resolver: &fakeResolver{}}}

	missing := filepath.Join(t.TempDir(), "tvwb.deps")
	exitCode := Run([]string{"prepare", "--manifest", missing, "--generate-keys"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "Generated GUI and webhook keys") {
		t.Fatalf("expected key generation notice, got %q", out.String())
	}

	credsPath := filepath.Join(home, "credentials.env")
	payload, err := os.ReadFile(credsPath)
	if err != nil {
		t.Fatalf("expected credentials file after rotation: %v", err)
	}
	// The env already carried keys; --generate-keys must replace them
	// rather than reuse them.
	if strings.Contains(string(payload), "test-gui-key") || strings.Contains(string(payload), "test-webhook-key") {
		t.Fatalf("expected fresh keys, got %q", payload)
	}
	if os.Getenv("GUI_KEY") == "test-gui-key" || os.Getenv("WEBHOOK_KEY") == "test-webhook-key" {
		t.Fatalf("expected rotated keys exported to the environment")
	}
}

func TestRunPrepareGeneratesCredentials(t *testing.T) {
	home := testHome(t)
	t.Setenv("GUI_KEY", "")
	t.Setenv("WEBHOOK_KEY", "")

	var out bytes.Buffer
	deps := Dependencies{Out: &out, Prepare: PrepareDeps{Resolver: &fakeResolver{}}}

	missing := filepath.Join(t.TempDir(), "tvwb.deps")
	exitCode := Run([]string{"prepare", "--manifest", missing}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "Generated GUI and webhook keys") {
		t.Fatalf("expected key generation notice, got %q", out.String())
	}

	credsPath := filepath.Join(home, "credentials.env")
	info, err := os.Stat(credsPath)
	if err != nil {
		t.Fatalf("expected credentials file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected credentials mode 0600, got %v", info.Mode().Perm())
	}
	payload, err := os.ReadFile(credsPath)
	if err != nil {
		t.Fatalf("read credentials: %v", err)
	}
	if !strings.Contains(string(payload), "GUI_KEY") || !strings.Contains(string(payload), "WEBHOOK_KEY") {
		t.Fatalf("expected both keys persisted, got %q", payload)
	}
}
