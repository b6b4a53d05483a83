package checkpoint

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// createMinIOContainer starts a MinIO server bound to a free host port.
func createMinIOContainer(ctx context.Context) (testcontainers.Container, string, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, "", fmt.Errorf("could not get free port: %w", err)
	}
	portStr := fmt.Sprintf("%d", port)

	req := testcontainers.ContainerRequest{
		Image: "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		Cmd:   []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ACCESS_KEY": "minio_admin",
			"MINIO_SECRET_KEY": "minio_admin",
		},
		ExposedPorts: []string{"9000/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = nat.PortMap{
				"9000/tcp": []nat.PortBinding{{HostPort: portStr}},
			}
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("9000/tcp").WithStartupTimeout(20*time.Second),
			wait.ForHTTP("/minio/health/ready").WithPort("9000/tcp").WithStartupTimeout(20*time.Second),
		),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start MinIO container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get host: %w", err)
	}
	return c, net.JoinHostPort(host, portStr), nil
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func TestMinioStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MinIO integration test in short mode")
	}
	ctx := context.Background()

	c, endpoint, err := createMinIOContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	cfg := MinioConfig{
		Endpoint:        endpoint,
		AccessKeyID:     "minio_admin",
		SecretAccessKey: "minio_admin",
		Bucket:          "checkpoints",
		Prefix:          "vecmigrate/",
		CreateBucket:    true,
	}

	s, err := NewMinioStore(ctx, cfg, nopLogger())
	require.NoError(t, err)

	_, err = s.Load(ctx, "Foo")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "Foo", []byte(`{"stage":"SchemaCreated"}`)))
	data, err := s.Load(ctx, "Foo")
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"SchemaCreated"}`, string(data))

	require.NoError(t, s.Delete(ctx, "Foo"))
	_, err = s.Load(ctx, "Foo")
	assert.ErrorIs(t, err, ErrNotFound)

	// A second store against the existing bucket must not try to create it.
	cfg.CreateBucket = false
	_, err = NewMinioStore(ctx, cfg, nopLogger())
	assert.NoError(t, err)
}

func TestMinioStore_MissingBucketWithoutCreation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MinIO integration test in short mode")
	}
	ctx := context.Background()

	c, endpoint, err := createMinIOContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	_, err = NewMinioStore(ctx, MinioConfig{
		Endpoint:        endpoint,
		AccessKeyID:     "minio_admin",
		SecretAccessKey: "minio_admin",
		Bucket:          "absent",
	}, nopLogger())
	assert.Error(t, err)
}
