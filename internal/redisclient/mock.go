package redisclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewWithCmdable wraps an existing command surface, used with Mock in tests
func NewWithCmdable(rdb cmdable) *Client {
	return &Client{rdb: rdb}
}

// Mock is an in-process stand-in for the Redis commands the client uses.
// Expiry is recorded but not enforced.
type Mock struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	Err  error
}

// NewMock creates an empty Mock
func NewMock() *Mock {
	return &Mock{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

// TTL returns the expiration last set for key
func (m *Mock) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

// Keys returns the number of stored keys
func (m *Mock) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *Mock) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.Err)
}

func (m *Mock) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewStringResult("", m.Err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *Mock) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewStatusResult("", m.Err)
	}
	m.data[key] = toString(value)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *Mock) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewBoolResult(false, m.Err)
	}
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = toString(value)
	m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *Mock) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewIntResult(0, m.Err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			delete(m.ttls, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *Mock) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewIntResult(0, m.Err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// Eval understands only the lock release script: delete KEYS[1] when it
// holds ARGV[1]
func (m *Mock) Eval(_ context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewCmdResult(nil, m.Err)
	}
	if script != releaseScript || len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, errors.New("mock: unsupported script"))
	}
	if v, ok := m.data[keys[0]]; ok && v == toString(args[0]) {
		delete(m.data, keys[0])
		delete(m.ttls, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}
