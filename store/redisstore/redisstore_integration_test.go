package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sandboxptc/ptc/store"
)

var (
	testRedisClient    *redis.Client
	testRedisContainer testcontainers.Container
	skipIntegration    bool
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	// Start Redis container once for all tests.
	var containerErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				containerErr = fmt.Errorf("docker not available: %v", r)
			}
		}()
		req := testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		}
		testRedisContainer, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
	}()

	if containerErr != nil {
		fmt.Printf("Docker not available, integration tests will be skipped: %v\n", containerErr)
		skipIntegration = true
	} else {
		host, err := testRedisContainer.Host(ctx)
		if err != nil {
			fmt.Printf("Failed to get container host: %v\n", err)
			skipIntegration = true
		} else {
			port, err := testRedisContainer.MappedPort(ctx, "6379")
			if err != nil {
				fmt.Printf("Failed to get container port: %v\n", err)
				skipIntegration = true
			} else {
				testRedisClient = redis.NewClient(&redis.Options{
					Addr: host + ":" + port.Port(),
				})
				if err := testRedisClient.Ping(ctx).Err(); err != nil {
					fmt.Printf("Failed to ping redis: %v\n", err)
					skipIntegration = true
				}
			}
		}
	}

	code := m.Run()

	if testRedisClient != nil {
		_ = testRedisClient.Close()
	}
	if testRedisContainer != nil {
		_ = testRedisContainer.Terminate(ctx)
	}
	os.Exit(code)
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if skipIntegration {
		t.Skip("docker not available")
	}
	opts.Redis = testRedisClient
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func TestNewRequiresRedis(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestRecordRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{KeyPrefix: "test:roundtrip:"})
	ctx := context.Background()

	started := time.Now().Add(-time.Second).Truncate(time.Millisecond)
	rec := store.Record{
		ExecutionID:   "exec-rt-1",
		StartedAt:     started,
		CompletedAt:   started.Add(time.Second),
		ToolCallCount: 2,
		Success:       true,
	}
	require.NoError(t, s.Record(ctx, rec))

	got, ok, err := s.Get(ctx, "exec-rt-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, got.ToolCallCount)
	require.True(t, got.Success)
	require.Equal(t, time.Second, got.Duration())
}

func TestGetMissingExecution(t *testing.T) {
	s := newTestStore(t, Options{KeyPrefix: "test:missing:"})

	_, ok, err := s.Get(context.Background(), "never-recorded")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRecordAppliesTTL(t *testing.T) {
	s := newTestStore(t, Options{KeyPrefix: "test:ttl:", TTL: time.Hour})
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, store.Record{ExecutionID: "exec-ttl-1", Success: false, Error: "timeout"}))

	ttl, err := testRedisClient.TTL(ctx, "test:ttl:exec-ttl-1").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Minute)
}

func TestFailedExecutionKeepsErrorText(t *testing.T) {
	s := newTestStore(t, Options{KeyPrefix: "test:err:"})
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, store.Record{
		ExecutionID: "exec-err-1",
		Success:     false,
		Error:       "maximum iteration limit (5) reached",
	}))

	got, ok, err := s.Get(ctx, "exec-err-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, got.Success)
	require.Contains(t, got.Error, "maximum iteration limit")
}
