// Package docker talks to the Docker daemon for host platform detection and registry login checks.
package docker

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"

	"github.com/bnema/eolkeeper/internal/boundaries/out"
	"github.com/bnema/eolkeeper/internal/domain"
)

// daemonAPI is the part of the Docker client used here.
type daemonAPI interface {
	ServerVersion(ctx context.Context) (types.Version, error)
	RegistryLogin(ctx context.Context, auth registry.AuthConfig) (registry.AuthenticateOKBody, error)
	Close() error
}

// Daemon implements out.HostPlatformProvider using the Docker API.
type Daemon struct {
	api daemonAPI
	log *log.Logger
}

// NewDaemon creates a Docker API client. An empty host uses DOCKER_HOST or the default socket.
func NewDaemon(host string, logger *log.Logger) (*Daemon, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return newDaemonWithAPI(cli, logger), nil
}

func newDaemonWithAPI(api daemonAPI, logger *log.Logger) *Daemon {
	return &Daemon{
		api: api,
		log: logger.WithPrefix("docker"),
	}
}

// HostPlatform returns the daemon's OS and architecture, falling back to the
// platform this binary runs on when the daemon is unreachable.
func (d *Daemon) HostPlatform(ctx context.Context) (domain.HostPlatform, error) {
	v, err := d.api.ServerVersion(ctx)
	if err != nil {
		d.log.Warn("docker daemon unavailable, using local platform", "error", err)
		return RuntimePlatform{}.HostPlatform(ctx)
	}
	if v.Os == "" || v.Arch == "" {
		d.log.Warn("docker daemon did not report its platform, using local platform")
		return RuntimePlatform{}.HostPlatform(ctx)
	}

	d.log.Debug("host platform detected", "os", v.Os, "arch", v.Arch, "version", v.Version)
	return domain.HostPlatform{OS: v.Os, Architecture: v.Arch}, nil
}

// Close releases the client.
func (d *Daemon) Close() error {
	return d.api.Close()
}

// RuntimePlatform implements out.HostPlatformProvider from the Go runtime.
type RuntimePlatform struct{}

func (RuntimePlatform) HostPlatform(context.Context) (domain.HostPlatform, error) {
	return domain.HostPlatform{OS: runtime.GOOS, Architecture: runtime.GOARCH}, nil
}

// CheckedSession verifies credentials against the registry through the Docker
// daemon before handing the login to the wrapped session.
type CheckedSession struct {
	daemon *Daemon
	next   out.RegistrySession
}

// NewCheckedSession wraps next with a daemon-side credential check.
func NewCheckedSession(daemon *Daemon, next out.RegistrySession) *CheckedSession {
	return &CheckedSession{daemon: daemon, next: next}
}

func (s *CheckedSession) Login(ctx context.Context, creds *domain.RegistryCredentials, registryAddr string) error {
	if creds == nil {
		return fmt.Errorf("%w: %s", domain.ErrNoCredentials, registryAddr)
	}

	body, err := s.daemon.api.RegistryLogin(ctx, registry.AuthConfig{
		Username:      creds.Username,
		Password:      creds.Password,
		ServerAddress: registryAddr,
	})
	if err != nil {
		return fmt.Errorf("docker login to %s failed: %w", registryAddr, err)
	}
	if status := strings.TrimSpace(body.Status); status != "" {
		s.daemon.log.Info(status, "registry", registryAddr)
	}

	return s.next.Login(ctx, creds, registryAddr)
}

func (s *CheckedSession) Logout(ctx context.Context, registryAddr string) error {
	return s.next.Logout(ctx, registryAddr)
}
