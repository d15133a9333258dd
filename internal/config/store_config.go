package config

import (
	"time"

	"github.com/pkg/errors"
)

// StoreBackend selects where the session is persisted.
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreFile   StoreBackend = "file"
	StoreRedis  StoreBackend = "redis"
)

type StoreConfig interface {
	GetSessionStore() StoreBackend
	GetSessionFile() string
	GetRedisAddr() string
	GetRedisKey() string
	GetRedisTTL() time.Duration
}

type StoreVars struct {
	Backend     StoreBackend  `env:"SESSION_STORE" envDefault:"file"`
	SessionFile string        `env:"SESSION_FILE" envDefault:"./data/session.json"`
	RedisAddr   string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisKey    string        `env:"REDIS_KEY" envDefault:"auth:session"`
	RedisTTL    time.Duration `env:"REDIS_TTL"`
}

var _ StoreConfig = StoreVars{}

func (s StoreVars) validate() error {
	switch s.Backend {
	case StoreMemory, StoreFile, StoreRedis:
		return nil
	default:
		return errors.Errorf("unknown SESSION_STORE %q", s.Backend)
	}
}

func (s StoreVars) GetSessionStore() StoreBackend {
	return s.Backend
}

func (s StoreVars) GetSessionFile() string {
	return s.SessionFile
}

func (s StoreVars) GetRedisAddr() string {
	return s.RedisAddr
}

func (s StoreVars) GetRedisKey() string {
	return s.RedisKey
}

func (s StoreVars) GetRedisTTL() time.Duration {
	return s.RedisTTL
}
