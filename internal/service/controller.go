package service

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// Controller quiesces the process that has the libraries open while they
// are being replaced. Callers log failures but never treat them as fatal:
// "already stopped" and "already running" are the common cases.
type Controller interface {
	Stop(ctx context.Context) error
	Start(ctx context.Context) error
}

// NewController returns a docker-backed controller for name, or a no-op
// controller when no service is configured.
func NewController(name string) Controller {
	if name == "" {
		return nopController{}
	}
	return &DockerController{container: name, docker: "docker"}
}

// DockerController stops and starts a named docker container via the
// docker CLI.
type DockerController struct {
	container string
	docker    string
}

func (d *DockerController) Stop(ctx context.Context) error {
	slog.Info("stopping container", "container", d.container)
	return d.run(ctx, "stop")
}

func (d *DockerController) Start(ctx context.Context) error {
	slog.Info("starting container", "container", d.container)
	return d.run(ctx, "start")
}

func (d *DockerController) run(ctx context.Context, verb string) error {
	cmd := exec.CommandContext(ctx, d.docker, verb, d.container)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("docker %s %s: %w: %s", verb, d.container, err, out)
	}
	return nil
}

type nopController struct{}

func (nopController) Stop(ctx context.Context) error  { return nil }
func (nopController) Start(ctx context.Context) error { return nil }
