package redis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/jonesrussell/faqhub/infrastructure/redis"
)

func TestNewClient_ReturnsErrorWhenAddressEmpty(t *testing.T) {
	t.Parallel()

	client, err := redis.NewClient(context.Background(), redis.Config{})
	if !errors.Is(err, redis.ErrEmptyAddress) {
		t.Fatalf("expected ErrEmptyAddress, got %v", err)
	}
	if client != nil {
		t.Error("expected nil client for invalid config")
	}
}

func TestNewClient_ConnectsToServer(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)

	client, err := redis.NewClient(context.Background(), redis.Config{Address: srv.Addr()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if setErr := client.Set(context.Background(), "k", "v", 0).Err(); setErr != nil {
		t.Fatalf("set failed: %v", setErr)
	}
	if got, _ := srv.Get("k"); got != "v" {
		t.Errorf("stored value = %q, want v", got)
	}
}

func TestConfig_Key(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		parts  []string
		want   string
	}{
		{name: "with prefix", prefix: "faqhub", parts: []string{"hash", "abc"}, want: "faqhub:hash:abc"},
		{name: "without prefix", parts: []string{"hash", "abc"}, want: "hash:abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := redis.Config{KeyPrefix: tt.prefix}
			if got := cfg.Key(tt.parts...); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}
