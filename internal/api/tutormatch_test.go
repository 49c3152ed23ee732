package api

import (
	"net/http"
	"testing"

	"github.com/studyhall/tutormatch/internal/config"
	"github.com/studyhall/tutormatch/internal/database"
	"github.com/studyhall/tutormatch/internal/match"
	"github.com/studyhall/tutormatch/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewTutorMatchApp(t *testing.T) {
	mux := http.NewServeMux()
	logger := testutil.TestLogger(t)
	mc := &match.Coordinator{}
	db := &database.MockTutorMatchRepository{}
	cfg := &config.Config{
		ServerAddr:     "localhost:8080",
		DatabaseDSN:    "dsn",
		SigningKey:     []byte("secret"),
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	app := NewTutorMatchApp(mux, logger, mc, db, nil, cfg)

	assert.NotNil(t, app, "expected app to be initialized")
	assert.NotNil(t, app.mux, "expected mux to be initialized")
	assert.NotNil(t, app.log, "expected logger to be set")
	assert.NotNil(t, app.db, "expected db to be set")
	assert.NotNil(t, app.mc, "expected coordinator to be set")
	assert.Equal(t, app.log, logger, "expected logger to be set")
	assert.Equal(t, app.db, db, "expected db to be set")
	assert.Equal(t, app.mc, mc, "expected coordinator to be set")
	assert.Equal(t, app.signingKey, cfg.SigningKey, "expected signing key to be set")
	assert.Equal(t, app.allowedOrigins, cfg.AllowedOrigins, "expected allowed origins to be set")
	assert.Equal(t, app.mux.Addr, cfg.ServerAddr, "expected server address to match config")
}
