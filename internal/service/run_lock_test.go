package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type mockRedisLockClient struct {
	setOK      bool
	setErr     error
	lastKey    string
	lastValue  interface{}
	lastTTL    time.Duration
	evalScript string
	evalKeys   []string
	evalArgs   []interface{}
}

func (m *mockRedisLockClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	m.lastKey = key
	m.lastValue = value
	m.lastTTL = expiration
	cmd := redis.NewBoolCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal(m.setOK)
	return cmd
}

func (m *mockRedisLockClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.evalScript = script
	m.evalKeys = keys
	m.evalArgs = args
	cmd := redis.NewCmd(ctx)
	cmd.SetVal(int64(1))
	return cmd
}

func TestLocalRunLocker(t *testing.T) {
	locker := NewLocalRunLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, 1)
	if err != nil {
		t.Fatalf("expected lock, got %v", err)
	}
	if _, err := locker.Acquire(ctx, 1); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	other, err := locker.Acquire(ctx, 2)
	if err != nil {
		t.Fatalf("locks must be per employee, got %v", err)
	}
	other()

	release()
	release()
	again, err := locker.Acquire(ctx, 1)
	if err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
	again()
}

func TestRedisRunLockerAcquire(t *testing.T) {
	t.Run("acquire and release with token", func(t *testing.T) {
		mock := &mockRedisLockClient{setOK: true}
		l := &redisRunLocker{client: mock, ttl: time.Minute, prefix: "summary:lock:", logger: zap.NewNop()}

		release, err := l.Acquire(context.Background(), 42)
		if err != nil {
			t.Fatalf("expected lock, got %v", err)
		}
		if mock.lastKey != "summary:lock:42" {
			t.Fatalf("unexpected key %q", mock.lastKey)
		}
		if mock.lastTTL != time.Minute {
			t.Fatalf("unexpected ttl %s", mock.lastTTL)
		}
		release()
		if mock.evalScript != redisRunLockReleaseScript {
			t.Fatalf("expected release script")
		}
		if len(mock.evalKeys) != 1 || mock.evalKeys[0] != "summary:lock:42" {
			t.Fatalf("unexpected release keys %+v", mock.evalKeys)
		}
		if len(mock.evalArgs) != 1 || mock.evalArgs[0] != mock.lastValue {
			t.Fatalf("release must use the acquire token, got %+v", mock.evalArgs)
		}
	})

	t.Run("held lock", func(t *testing.T) {
		l := &redisRunLocker{client: &mockRedisLockClient{setOK: false}, ttl: time.Minute, prefix: "summary:lock:", logger: zap.NewNop()}
		if _, err := l.Acquire(context.Background(), 42); !errors.Is(err, ErrRunInProgress) {
			t.Fatalf("expected ErrRunInProgress, got %v", err)
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisRunLocker{client: &mockRedisLockClient{setErr: errors.New("redis down")}, ttl: time.Minute, prefix: "summary:lock:", logger: zap.NewNop()}
		release, err := l.Acquire(context.Background(), 42)
		if err != nil {
			t.Fatalf("expected fail-open, got %v", err)
		}
		release()
	})
}

func TestNewRedisRunLockerNilClient(t *testing.T) {
	if NewRedisRunLocker(nil, time.Minute, nil) != nil {
		t.Fatalf("expected nil locker without client")
	}
}
