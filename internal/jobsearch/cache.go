package jobsearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cv-jobmatch/backend/internal/models"
	"github.com/valkey-io/valkey-go"
	"github.com/vmihailenco/msgpack/v5"
)

const cacheKeyPrefix = "jobsearch:"

// Searcher runs a job search.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]models.JobListing, error)
}

// KV is the byte store behind CachedSearcher.
type KV interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// CachedSearcher is a read-through cache in front of a Client. Only
// successful searches are cached; cache errors are logged and ignored.
type CachedSearcher struct {
	client *Client
	kv     KV
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSearcher wraps client with kv.
func NewCachedSearcher(client *Client, kv KV, ttl time.Duration, logger *slog.Logger) *CachedSearcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSearcher{client: client, kv: kv, ttl: ttl, logger: logger.With("component", "jobcache")}
}

func (s *CachedSearcher) Search(ctx context.Context, q Query) ([]models.JobListing, error) {
	q = s.client.Normalize(q)
	key := cacheKey(s.client.Locale(), q)

	if data, ok, err := s.kv.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", "error", err)
	} else if ok {
		var jobs []models.JobListing
		err := msgpack.Unmarshal(data, &jobs)
		if err == nil {
			s.logger.Debug("cache hit", "key", key, "jobs", len(jobs))
			if jobs == nil {
				jobs = []models.JobListing{}
			}
			return jobs, nil
		}
		s.logger.Warn("cache entry undecodable", "key", key, "error", err)
	}

	jobs, err := s.client.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	data, err := msgpack.Marshal(jobs)
	if err != nil {
		s.logger.Warn("cache encode failed", "error", err)
		return jobs, nil
	}
	if err := s.kv.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache write failed", "error", err)
	}
	return jobs, nil
}

// cacheKey hashes the fields that change the upstream result. Caller IP
// and user agent are left out so different callers share entries.
func cacheKey(locale string, q Query) string {
	raw := strings.Join([]string{locale, q.Keywords, q.Location, strconv.Itoa(q.Page)}, "\x00")
	sum := sha256.Sum256([]byte(raw))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// ValkeyKV stores cache entries in Valkey.
type ValkeyKV struct {
	Client valkey.Client
}

// NewValkeyKV connects to Valkey and verifies the connection with PING.
func NewValkeyKV(ctx context.Context, address, password string) (*ValkeyKV, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Valkey client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping Valkey: %w", err)
	}

	return &ValkeyKV{Client: client}, nil
}

func (v *ValkeyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := v.Client.Do(ctx, v.Client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return data, true, nil
}

func (v *ValkeyKV) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	var cmd valkey.Completed
	if ttl > 0 {
		cmd = v.Client.B().Set().Key(key).Value(valkey.BinaryString(val)).Ex(ttl).Build()
	} else {
		cmd = v.Client.B().Set().Key(key).Value(valkey.BinaryString(val)).Build()
	}
	if err := v.Client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

func (v *ValkeyKV) Close() {
	v.Client.Close()
}
