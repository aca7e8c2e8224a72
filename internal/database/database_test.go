package database

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	db, err := Connect("sqlite", "file:database_test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.True(t, db.Migrator().HasTable(&models.Reaction{}))
	require.True(t, db.Migrator().HasTable(&models.Comment{}))
	require.True(t, db.Migrator().HasTable(&models.Activity{}))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("mysql", "dsn")
	require.Error(t, err)
}

func TestConnectRequiresDSN(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)
	_, err = ConnectSQLite("")
	require.Error(t, err)
	_, err = ConnectRedis("")
	require.Error(t, err)
	_, err = ConnectNATS("", "test")
	require.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := ConnectRedis("redis://" + server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	server.CheckGet(t, "k", "v")
}
