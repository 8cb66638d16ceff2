package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPublic = `listen_addr: ":8080"
log_level: debug
log_json: true
storage: postgres
notify: nats
notify_subject_prefix: agora
cors_allowed_origins: ["http://localhost:3000"]
max_title_len: 200
max_body_len: 10000
max_post_len: 5000
sweep_interval: 1m
read_timeout: 5s
write_timeout: 10s
shutdown_timeout: 15s
writes_per_second: 1
write_burst: 5
global_rps: 1000
limiter_idle_reset: 1h
`

const validPrivate = `pg:
  host: localhost
  port: 5432
  user: agora
  password: secret
  dbname: agora
nats_url: nats://localhost:4222
`

func writeConfig(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
	return dir
}

func TestMustLoad(t *testing.T) {
	cfg := MustLoad(writeConfig(t, validPublic, validPrivate))

	assert.Equal(t, ":8080", cfg.Public.ListenAddr)
	assert.Equal(t, "postgres", cfg.Public.StorageKind)
	assert.Equal(t, time.Minute, cfg.Public.SweepInterval)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Public.CorsAllowedOrigins)
	assert.Equal(t, 5432, cfg.Private.Pg.Port)
	assert.Equal(t, "nats://localhost:4222", cfg.Private.NatsURL)
}

func TestMustLoad_RequiredFields(t *testing.T) {
	public := "listen_addr: \":8080\"\nstorage: memory\nnotify: none\n"
	dir := writeConfig(t, public, "")

	assert.Panics(t, func() { MustLoad(dir) })
}

func TestMustLoad_MissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(t.TempDir()) })
}

func TestMustLoad_UnknownField(t *testing.T) {
	dir := writeConfig(t, validPublic+"jwt_ttl: 1h\n", validPrivate)

	assert.Panics(t, func() { MustLoad(dir) })
}

func TestValidate(t *testing.T) {
	base := MustLoad(writeConfig(t, validPublic, validPrivate))

	t.Run("memory storage skips pg", func(t *testing.T) {
		cfg := *base
		cfg.Public.StorageKind = "memory"
		cfg.Private.Pg = Pg{}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("postgres requires pg", func(t *testing.T) {
		cfg := *base
		cfg.Private.Pg = Pg{}
		assert.Error(t, cfg.Validate())
	})

	t.Run("nats requires url", func(t *testing.T) {
		cfg := *base
		cfg.Private.NatsURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("redis requires url", func(t *testing.T) {
		cfg := *base
		cfg.Public.NotifyKind = "redis"
		assert.Error(t, cfg.Validate())
		cfg.Private.RedisURL = "redis://localhost:6379/0"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown storage", func(t *testing.T) {
		cfg := *base
		cfg.Public.StorageKind = "mongo"
		assert.Error(t, cfg.Validate())
	})
}
