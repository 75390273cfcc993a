// Where: internal/app/container_test.go
// What: Tests for container lifecycle commands.
// Why: Up must converge on a fresh container and status must summarize service state.
package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

type fakeDockerClient struct {
	summaries []container.Summary
	listErr   error

	created []string
	started []string
	stopped []string
	removed []string
}

func (f *fakeDockerClient) ContainerList(_ context.Context, _ container.ListOptions) ([]container.Summary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.summaries, nil
}

func (f *fakeDockerClient) ContainerCreate(_ context.Context, _ *container.Config, _ *container.HostConfig,
	_ *network.NetworkingConfig, _ *ocispec.Platform, name string) (container.CreateResponse, error) {
	f.created = append(f.created, name)
	return container.CreateResponse{ID: "abcdef1234567890"}, nil
}

func (f *fakeDockerClient) ContainerStart(_ context.Context, id string, _ container.StartOptions) error {
	f.started = append(f.started, id)
	return nil
}

func (f *fakeDockerClient) ContainerStop(_ context.Context, id string, _ container.StopOptions) error {
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeDockerClient) ContainerRemove(_ context.Context, id string, _ container.RemoveOptions) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeDockerClient) ImagePull(_ context.Context, _ string, _ image.PullOptions) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func TestRunContainerUpStartsContainer(t *testing.T) {
	testHome(t)

	client := &fakeDockerClient{}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Container: ContainerDeps{Client: client}}

	exitCode := Run([]string{"container", "up"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if len(client.created) != 1 || client.created[0] != "tvwb-server" {
		t.Fatalf("unexpected creates: %v", client.created)
	}
	if len(client.started) != 1 {
		t.Fatalf("expected one start, got %v", client.started)
	}
	if !strings.Contains(out.String(), "Container running") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if !strings.Contains(out.String(), "5000 -> 80") {
		t.Fatalf("expected port mapping, got %q", out.String())
	}
}

func TestRunContainerUpReplacesExisting(t *testing.T) {
	testHome(t)

	client := &fakeDockerClient{summaries: []container.Summary{{
		ID:    "oldcontainer1234",
		Names: []string{"/tvwb-server"},
		Image: "tvwb:latest",
		State: "running",
	}}}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Container: ContainerDeps{Client: client}}

	exitCode := Run([]string{"container", "up", "--port", "9999"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if len(client.stopped) != 1 {
		t.Fatalf("expected old container stopped, got %v", client.stopped)
	}
	if len(client.removed) != 1 {
		t.Fatalf("expected old container removed, got %v", client.removed)
	}
	if len(client.created) != 1 {
		t.Fatalf("expected replacement created, got %v", client.created)
	}
	if !strings.Contains(out.String(), "9999 -> 80") {
		t.Fatalf("expected custom port mapping, got %q", out.String())
	}
}

func TestRunContainerDownRemovesAll(t *testing.T) {
	testHome(t)

	client := &fakeDockerClient{summaries: []container.Summary{
		{ID: "c1", Names: []string{"/tvwb-server"}, Image: "tvwb:latest", State: "running"},
		{ID: "c2", Names: []string{"/tvwb-old"}, Image: "tvwb:latest", State: "exited"},
	}}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Container: ContainerDeps{Client: client}}

	exitCode := Run([]string{"container", "down"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	// Only the running container needs a stop; both get removed.
	if len(client.stopped) != 1 {
		t.Fatalf("unexpected stops: %v", client.stopped)
	}
	if len(client.removed) != 2 {
		t.Fatalf("unexpected removes: %v", client.removed)
	}
	if !strings.Contains(out.String(), "Removed: tvwb-server") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunContainerDownDeclinedLeavesContainers(t *testing.T) {
	testHome(t)

	client := &fakeDockerClient{summaries: []container.Summary{
		{ID: "c1", Names: []string{"/tvwb-server"}, Image: "tvwb:latest", State: "running"},
	}}
	prompter := &fakePrompter{answer: false}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Prompter: prompter, Container: ContainerDeps{Client: client}}

	exitCode := Run([]string{"container", "down"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if prompter.calls != 1 {
		t.Fatalf("expected one confirmation, got %d", prompter.calls)
	}
	if len(client.removed) != 0 || len(client.stopped) != 0 {
		t.Fatalf("expected containers untouched, got stops=%v removes=%v", client.stopped, client.removed)
	}
	if !strings.Contains(out.String(), "Aborted.") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunContainerDownForceSkipsPrompt(t *testing.T) {
	testHome(t)

	client := &fakeDockerClient{summaries: []container.Summary{
		{ID: "c1", Names: []string{"/tvwb-server"}, Image: "tvwb:latest", State: "running"},
	}}
	prompter := &fakePrompter{answer: false}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Prompter: prompter, Container: ContainerDeps{Client: client}}

	exitCode := Run([]string{"container", "down", "--force"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if prompter.calls != 0 {
		t.Fatalf("expected no confirmation, got %d", prompter.calls)
	}
	if len(client.removed) != 1 {
		t.Fatalf("expected container removed, got %v", client.removed)
	}
}

func TestRunContainerDownNothingToRemove(t *testing.T) {
	testHome(t)

	client := &fakeDockerClient{}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Container: ContainerDeps{Client: client}}

	exitCode := Run([]string{"container", "down"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(out.String(), "Nothing to remove.") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunContainerStatusDerivesServiceState(t *testing.T) {
	testHome(t)

	client := &fakeDockerClient{summaries: []container.Summary{{
		ID:    "abcdef1234567890",
		Names: []string{"/tvwb-server"},
		Image: "tvwb:latest",
		State: "running",
	}}}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Container: ContainerDeps{Client: client}}

	exitCode := Run([]string{"container", "status"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "running") {
		t.Fatalf("expected running state, got %q", out.String())
	}
	if !strings.Contains(out.String(), "tvwb-server") {
		t.Fatalf("expected container name, got %q", out.String())
	}
	// The SDK's long ID is shortened for display.
	if !strings.Contains(out.String(), "abcdef123456") || strings.Contains(out.String(), "abcdef1234567890") {
		t.Fatalf("expected shortened ID, got %q", out.String())
	}
}

func TestRunContainerStatusTerminated(t *testing.T) {
	testHome(t)

	client := &fakeDockerClient{summaries: []container.Summary{{
		ID:    "c1",
		Names: []string{"/tvwb-server"},
		Image: "tvwb:latest",
		State: "exited",
	}}}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Container: ContainerDeps{Client: client}}

	exitCode := Run([]string{"container", "status"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(out.String(), "terminated") {
		t.Fatalf("expected terminated state, got %q", out.String())
	}
}

func TestRunContainerStatusEmpty(t *testing.T) {
	testHome(t)

	client := &fakeDockerClient{}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Container: ContainerDeps{Client: client}}

	exitCode := Run([]string{"container", "status"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(out.String(), "not started") {
		t.Fatalf("expected not started state, got %q", out.String())
	}
	if !strings.Contains(out.String(), "No containers.") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunContainerStatusListError(t *testing.T) {
	testHome(t)

	client := &fakeDockerClient{listErr: errors.New("daemon unreachable")}
	var out bytes.Buffer
	deps := Dependencies{Out: &out, Container: ContainerDeps{Client: client}}

	exitCode := Run([]string{"container", "status"}, deps)
	if exitCode == 0 {
		t.Fatalf("expected non-zero exit code on list failure")
	}
	if !strings.Contains(out.String(), "daemon unreachable") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunContainerCommandsWithoutDocker(t *testing.T) {
	testHome(t)

	for _, args := range [][]string{
		{"container", "up"},
		{"container", "down"},
		{"container", "status"},
	} {
		var out bytes.Buffer
		exitCode := Run(args, Dependencies{Out: &out})
		if exitCode == 0 {
			t.Fatalf("expected non-zero exit code for %v without docker", args)
		}
		if !strings.Contains(out.String(), "docker is not available") {
			t.Fatalf("unexpected output for %v: %q", args, out.String())
		}
	}
}
