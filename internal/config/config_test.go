package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, StoreDriverFile, cfg.StoreDriver)
	require.Equal(t, SyncDriverStore, cfg.SyncDriver)
	require.Equal(t, BackendLocal, cfg.Backend)
	require.Equal(t, 50, cfg.ActivityCapacity)
	require.True(t, cfg.PersistActivity)
	require.Equal(t, 5*time.Minute, cfg.GalleryCacheTTL)
	require.Equal(t, 30*time.Second, cfg.StreamKeepalive)
	require.Equal(t, "gallery-", cfg.SyncNamespace)
}

func TestFromViperRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]any{
		"redis store without url":    {"store.driver": "redis"},
		"unknown store":              {"store.driver": "indexeddb"},
		"nats without url":           {"sync.driver": "nats"},
		"remote without database":    {"backend": "remote"},
		"remote with unknown driver": {"backend": "remote", "database.url": "x", "database.driver": "mysql"},
		"zero capacity":              {"activity.capacity": 0},
		"capacity above page limit":  {"activity.capacity": 101},
		"bad ttl":                    {"gallery.cache_ttl": "soon"},
		"negative keepalive":         {"stream.keepalive": "-1s"},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			for key, value := range values {
				v.Set(key, value)
			}
			_, err := fromViper(v)
			require.Error(t, err)
		})
	}
}

func TestLoadReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("FOTOOWL_APP_PORT", ":9090")
	t.Setenv("FOTOOWL_STORE_DRIVER", "redis")
	t.Setenv("FOTOOWL_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("FOTOOWL_ACTIVITY_PERSIST", "false")
	t.Setenv("FOTOOWL_BACKEND", "remote")
	t.Setenv("FOTOOWL_DATABASE_DRIVER", "sqlite")
	t.Setenv("FOTOOWL_DATABASE_URL", "file::memory:")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, StoreDriverRedis, cfg.StoreDriver)
	require.False(t, cfg.PersistActivity)
	require.Equal(t, DatabaseDriverSQLite, cfg.DatabaseDriver)
}
