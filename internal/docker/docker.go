// Where: internal/docker/docker.go
// What: Docker SDK client subset and constructor.
// Why: A narrow interface keeps container tests free of a real daemon.
package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Client defines the subset of Docker SDK methods this package uses.
type Client interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
}

// NewClient constructs a Docker SDK client using environment defaults.
func NewClient() (Client, error) {
	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return dockerClient, nil
}

// Puller adapts the client to the pull-only interface the dependency
// resolver consumes.
type Puller struct {
	Client Client
}

// Pull fetches an image and drains the progress stream, so the pull has
// fully completed (or failed) by the time it returns.
func (p Puller) Pull(ctx context.Context, ref string) error {
	if p.Client == nil {
		return fmt.Errorf("docker client is nil")
	}
	rc, err := p.Client.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return err
	}
	defer rc.Close()
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("read pull stream: %w", err)
	}
	return nil
}
