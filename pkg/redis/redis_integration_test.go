//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timesheet-auditor/config"
)

func TestClient_Allow(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	c, err := NewClient(&config.RedisConfig{Addr: addr}, zap.NewNop())
	if err != nil {
		t.Fatalf("无法连接测试 Redis: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	key := "test:" + uuid.NewString()
	for i := 1; i <= 3; i++ {
		ok, err := c.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("第 %d 次请求应放行: ok=%v err=%v", i, ok, err)
		}
	}
	if ok, _ := c.Allow(ctx, key, 3, time.Minute); ok {
		t.Error("第 4 次请求应被限流")
	}

	short := "test:" + uuid.NewString()
	if ok, _ := c.Allow(ctx, short, 1, 200*time.Millisecond); !ok {
		t.Fatal("首次请求应放行")
	}
	time.Sleep(300 * time.Millisecond)
	if ok, _ := c.Allow(ctx, short, 1, 200*time.Millisecond); !ok {
		t.Error("窗口过期后应重新放行")
	}
}
