package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-service/internal/adapters/repositories"
	"logistics-service/internal/domain"
	"logistics-service/internal/platform/db"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func openStores(t *testing.T, path string) *repositories.Stores {
	t.Helper()
	conn, err := db.Open(context.Background(), "sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return repositories.NewStores(conn)
}

func TestSeedAndCreateUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	dbFlags := []string{"--driver", "sqlite", "--database", path}

	_, err := execute(t, append(dbFlags, "seed", "--file", "../../data/seeds/fleet.yaml")...)
	require.NoError(t, err)
	_, err = execute(t, append(dbFlags, "seed", "--file", "../../data/seeds/fleet.yaml")...)
	require.NoError(t, err, "seeding twice leaves the data alone")

	_, err = execute(t, append(dbFlags, "createuser",
		"--username", "dispatcher", "--email", "dispatcher@example.com", "--password", "correct-horse", "--staff")...)
	require.NoError(t, err)

	stores := openStores(t, path)
	ctx := context.Background()
	routes, err := stores.Routes.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, routes)

	u, err := stores.Users.GetByUsername(ctx, "dispatcher")
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.Equal(t, "dispatcher@example.com", u.Email)
}

func TestCreateUserReportsFieldErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	_, err := execute(t, "--database", path, "init")
	require.NoError(t, err)

	_, err = execute(t, "--database", path, "createuser",
		"--username", "shorty", "--email", "shorty@example.com", "--password", "short")
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "password")
}

func TestSchemaPrintsYAML(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "openapi: 3.0.3")
	assert.Contains(t, out, "/api/dispatches/validate/:")
}
