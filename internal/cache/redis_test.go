package cache

import (
	"context"
	"testing"
	"time"

	"github.com/juniormojica/estuarriendo-sub000/pkg/config"
)

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	if c := NewClient(&config.CacheConfig{}); c != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
}

func TestUnreachableServerIsNotAMiss(t *testing.T) {
	c := NewClient(&config.CacheConfig{RedisAddr: "127.0.0.1:1", ViewTTL: time.Minute})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := c.Get(ctx, "container:view:1")
	if err == nil || err == ErrMiss {
		t.Fatalf("expected a connection error, got %v", err)
	}
	if _, err := c.Incr(ctx, "container:gen:1"); err == nil {
		t.Fatalf("expected a connection error from Incr")
	}
	if err := c.Delete(ctx); err != nil {
		t.Fatalf("deleting no keys should not reach the server: %v", err)
	}
}
