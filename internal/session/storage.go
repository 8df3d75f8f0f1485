package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trustlens/internal/domain"
)

// Record es la proyeccion durable de la sesion: usuario, credencial y flag.
// Nunca contiene estado transitorio (loading, avisos).
type Record struct {
	User            *domain.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Storage persiste el Record entre reinicios. Load devuelve el Record cero
// cuando no hay datos o estan corruptos; la corrupcion nunca es un error
// que bloquee el arranque.
type Storage interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

type fileStorage struct {
	path string
}

// NewFileStorage guarda el Record como JSON en un archivo local.
func NewFileStorage(path string) Storage {
	return &fileStorage{path: path}
}

func (s *fileStorage) Load(_ context.Context) (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Datos corruptos equivalen a sesion ausente.
		return Record{}, nil
	}
	return rec, nil
}

func (s *fileStorage) Save(_ context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *fileStorage) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisStorage struct {
	client redisKV
	key    string
}

// NewRedisStorage guarda el Record como blob JSON bajo una clave fija.
func NewRedisStorage(client *redis.Client, key string) Storage {
	if client == nil {
		return nil
	}
	if strings.TrimSpace(key) == "" {
		key = "trustlens:session"
	}
	return &redisStorage{client: client, key: key}
}

func (s *redisStorage) Load(ctx context.Context) (Record, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, nil
		}
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, nil
	}
	return rec, nil
}

func (s *redisStorage) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func (s *redisStorage) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
