package db

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "localhost", Port: 5432, User: "app", Password: "p@ss word", Name: "typecast"}

	u, err := url.Parse(cfg.DSN())
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "localhost:5432", u.Host)
	assert.Equal(t, "/typecast", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pw)

	cfg.SSLMode = "require"
	u, err = url.Parse(cfg.DSN())
	require.NoError(t, err)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}
