package session

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mohammad-safakhou/graphjudge/config"
)

func TestRedisStoreAgainstRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("redis container: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	client, err := Conn(ctx, config.RedisConfig{Host: host, Port: port.Int(), Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("redis conn: %v", err)
	}

	s := NewRedisStore(client, time.Minute)

	if err := s.Append(ctx, "sess-1", record("r1", "q1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, "sess-1", record("r2", "q2")); err != nil {
		t.Fatalf("append: %v", err)
	}

	records, err := s.Records(ctx, "sess-1")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 2 || records[0].ID != "r1" || records[1].ID != "r2" {
		t.Fatalf("wrong records or order: %v", records)
	}

	ttl, err := client.TTL(ctx, sessionKey("sess-1")).Result()
	if err != nil || ttl <= 0 {
		t.Fatalf("session key must carry a TTL, got %v (%v)", ttl, err)
	}

	if err := s.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	records, _ = s.Records(ctx, "sess-1")
	if len(records) != 0 {
		t.Fatalf("cleared session must be empty, got %v", records)
	}
}
