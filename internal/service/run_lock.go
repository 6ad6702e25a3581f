package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RunLocker serializa las ejecuciones del resumen por empleado. Acquire no espera:
// si otra ejecución tiene el lock devuelve ErrRunInProgress.
type RunLocker interface {
	Acquire(ctx context.Context, employeeID int64) (release func(), err error)
}

type localRunLocker struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

// NewLocalRunLocker sirve para una sola instancia del servicio.
func NewLocalRunLocker() RunLocker {
	return &localRunLocker{held: make(map[int64]struct{})}
}

func (l *localRunLocker) Acquire(_ context.Context, employeeID int64) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[employeeID]; busy {
		return nil, ErrRunInProgress
	}
	l.held[employeeID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, employeeID)
			l.mu.Unlock()
		})
	}, nil
}

// Solo borra la clave si sigue siendo nuestra.
const redisRunLockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type redisLockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisRunLocker struct {
	client redisLockClient
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewRedisRunLocker comparte el lock entre instancias. El TTL acota cuánto puede
// quedar tomado si el proceso muere a mitad de una ejecución.
func NewRedisRunLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) RunLocker {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisRunLocker{
		client: client,
		ttl:    ttl,
		prefix: "summary:lock:",
		logger: logger,
	}
}

func (l *redisRunLocker) Acquire(ctx context.Context, employeeID int64) (func(), error) {
	key := l.prefix + strconv.FormatInt(employeeID, 10)
	token := uuid.NewString()

	lockCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	ok, err := l.client.SetNX(lockCtx, key, token, l.ttl).Result()
	if err != nil {
		// Fail-open: sin Redis preferimos correr sin lock antes que bloquear el servicio.
		l.logger.Warn("run lock unavailable", zap.Error(err), zap.Int64("employee_id", employeeID))
		return func() {}, nil
	}
	if !ok {
		return nil, fmt.Errorf("employee %d: %w", employeeID, ErrRunInProgress)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			if err := l.client.Eval(releaseCtx, redisRunLockReleaseScript, []string{key}, token).Err(); err != nil {
				l.logger.Warn("run lock release failed", zap.Error(err), zap.Int64("employee_id", employeeID))
			}
		})
	}, nil
}
