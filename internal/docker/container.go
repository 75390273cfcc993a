// Where: internal/docker/container.go
// What: Server container lifecycle via the Docker SDK.
// Why: Label-scoped discovery keeps up/down/status stateless across CLI runs.
package docker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/go-connections/nat"

	"github.com/tvwb/tradingview-webhooks-bot/internal/meta"
)

const (
	// ProjectLabel marks every container this tool owns.
	ProjectLabel = meta.LabelPrefix + ".project"
	// RoleLabel distinguishes the server container from future roles.
	RoleLabel = meta.LabelPrefix + ".role"

	roleServer = "server"
)

// ContainerInfo is the state snapshot shown by status.
type ContainerInfo struct {
	ID    string
	Name  string
	Image string
	State string
}

// UpOptions parameterizes the server container.
type UpOptions struct {
	Image    string
	Name     string
	HostPort int
}

func (o UpOptions) withDefaults() UpOptions {
	if o.Image == "" {
		o.Image = meta.DefaultImageTag
	}
	if o.Name == "" {
		o.Name = meta.ContainerName
	}
	if o.HostPort == 0 {
		o.HostPort = meta.DefaultPort
	}
	return o
}

func projectFilter() filters.Args {
	return filters.NewArgs(filters.Arg("label", fmt.Sprintf("%s=%s", ProjectLabel, meta.Slug)))
}

// Up starts the server container, replacing any previous instance so
// repeated invocations always converge on a fresh container.
func Up(ctx context.Context, c Client, opts UpOptions) (ContainerInfo, error) {
	if c == nil {
		return ContainerInfo{}, fmt.Errorf("docker client is nil")
	}
	opts = opts.withDefaults()

	existing, err := List(ctx, c)
	if err != nil {
		return ContainerInfo{}, err
	}
	for _, ctr := range existing {
		if ctr.Name != opts.Name {
			continue
		}
		if ctr.State == "running" {
			if err := c.ContainerStop(ctx, ctr.ID, container.StopOptions{}); err != nil {
				return ContainerInfo{}, fmt.Errorf("stop %s: %w", ctr.Name, err)
			}
		}
		if err := c.ContainerRemove(ctx, ctr.ID, container.RemoveOptions{}); err != nil {
			return ContainerInfo{}, fmt.Errorf("remove %s: %w", ctr.Name, err)
		}
	}

	// The image always serves on the same inside port; only the host
	// side is configurable.
	inside, err := nat.NewPort("tcp", strconv.Itoa(meta.ContainerPort))
	if err != nil {
		return ContainerInfo{}, err
	}
	cfg := &container.Config{
		Image: opts.Image,
		Labels: map[string]string{
			ProjectLabel: meta.Slug,
			RoleLabel:    roleServer,
		},
		ExposedPorts: nat.PortSet{inside: struct{}{}},
	}
	hostCfg := &container.HostConfig{
		PortBindings: nat.PortMap{
			inside: []nat.PortBinding{{HostPort: strconv.Itoa(opts.HostPort)}},
		},
		RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
	}

	created, err := c.ContainerCreate(ctx, cfg, hostCfg, nil, nil, opts.Name)
	if err != nil {
		return ContainerInfo{}, fmt.Errorf("create container: %w", err)
	}
	if err := c.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return ContainerInfo{}, fmt.Errorf("start container: %w", err)
	}
	return ContainerInfo{ID: shortID(created.ID), Name: opts.Name, Image: opts.Image, State: "running"}, nil
}

// Down stops and removes every container this tool owns. Returns the
// names that were removed.
func Down(ctx context.Context, c Client) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("docker client is nil")
	}
	containers, err := List(ctx, c)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, ctr := range containers {
		if ctr.State == "running" {
			if err := c.ContainerStop(ctx, ctr.ID, container.StopOptions{}); err != nil {
				return removed, fmt.Errorf("stop %s: %w", ctr.Name, err)
			}
		}
		if err := c.ContainerRemove(ctx, ctr.ID, container.RemoveOptions{}); err != nil {
			return removed, fmt.Errorf("remove %s: %w", ctr.Name, err)
		}
		removed = append(removed, ctr.Name)
	}
	return removed, nil
}

// List returns every container carrying the project label, running or not.
func List(ctx context.Context, c Client) ([]ContainerInfo, error) {
	if c == nil {
		return nil, fmt.Errorf("docker client is nil")
	}
	containers, err := c.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: projectFilter(),
	})
	if err != nil {
		return nil, err
	}
	result := make([]ContainerInfo, 0, len(containers))
	for _, ctr := range containers {
		name := ""
		if len(ctr.Names) > 0 {
			name = strings.TrimPrefix(ctr.Names[0], "/")
		}
		result = append(result, ContainerInfo{
			ID:    shortID(ctr.ID),
			Name:  name,
			Image: ctr.Image,
			State: ctr.State,
		})
	}
	return result, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
