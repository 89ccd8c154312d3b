package registry_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/registry/pkg/registrysdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and shared assertions for the registry end-to-end tests.
 */

const (
	testImageName = "registry-e2e-test:latest"

	adminUsername = "admin"
	adminPassword = "Admin123!"
)

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building registry Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up registry Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/registry/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// relaxedLimits keeps the many rapid requests of a test under the limits.
var relaxedLimits = map[string]string{
	"RATELIMIT_LOGIN_REQUESTS":   "1000",
	"RATELIMIT_LOGIN_WINDOW_SEC": "60",
	"RATELIMIT_LOGIN_BURST":      "1000",
	"RATELIMIT_WRITE_REQUESTS":   "1000",
	"RATELIMIT_WRITE_BURST":      "1000",
	"RATELIMIT_READ_REQUESTS":    "1000",
	"RATELIMIT_READ_BURST":       "1000",
}

type containerOptions struct {
	env             map[string]string
	networks        []string
	defaultLimits   bool
	startupDeadline time.Duration
}

// setupRegistryContainer starts the registry and creates the admin operator.
// It returns the base URL and the running container.
func setupRegistryContainer(t *testing.T, opts containerOptions) (string, testcontainers.Container) {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"REGISTRY_ISSUER":     "registry-e2e",
		"REGISTRY_MASTER_KEY": "e2e-master-key",
		"ENV":                 "test",
		"LOG_LEVEL":           "info",
		"LOG_FORMAT":          "json",
	}
	if !opts.defaultLimits {
		for k, v := range relaxedLimits {
			env[k] = v
		}
	}
	for k, v := range opts.env {
		env[k] = v
	}
	if opts.startupDeadline == 0 {
		opts.startupDeadline = 60 * time.Second
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		Networks:     opts.networks,
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8080/tcp").
			WithStartupTimeout(opts.startupDeadline),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	out := registryctl(t, container, "create-admin", "-u", adminUsername, "-p", adminPassword)
	require.Contains(t, out, "created")

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port()), container
}

// registryctl runs the maintenance binary inside the container and returns
// its output.
func registryctl(t *testing.T, container testcontainers.Container, args ...string) string {
	t.Helper()

	code, reader, err := container.Exec(context.Background(), append([]string{"registryctl"}, args...), tcexec.Multiplexed())
	require.NoError(t, err)
	out, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, 0, code, "registryctl %s: %s", strings.Join(args, " "), out)
	return string(out)
}

// login returns an admin session.
func login(t *testing.T, baseURL string) *registrysdk.Session {
	t.Helper()

	session, err := registrysdk.NewSDKClient(baseURL).AuthenticateWithPassword(t.Context(), adminUsername, adminPassword, nil)
	require.NoError(t, err, "login should succeed")
	return session
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *registrysdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertStatus checks err is an API error with the given status code.
func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *registrysdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
}
