package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: sqlite
  path: ":memory:"
jwt:
  secret: from-file
storage:
  driver: local
  local_root: /tmp/up
`)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ES_ADDRESSES", "http://a:9200, http://b:9200,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.GetDSN())
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, cfg.Elasticsearch.Addresses)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StorageLocal, cfg.Storage.Driver)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Storage.Driver = StorageS3
	assert.Error(t, cfg.Validate(), "s3 without bucket")

	cfg = Default()
	cfg.Env = "production"
	assert.Error(t, cfg.Validate(), "empty secret in production")

	cfg.JWT.Secret = "s3cret"
	assert.NoError(t, cfg.Validate())
}

func TestGetDSN(t *testing.T) {
	d := DatabaseConfig{Driver: DriverMySQL, User: "u", Password: "p", Host: "db", Port: 3306, Name: "cms"}
	assert.Equal(t, "u:p@tcp(db:3306)/cms?charset=utf8mb4&parseTime=True&loc=UTC", d.GetDSN())

	d.Driver = DriverPostgres
	d.Port = 5432
	assert.Contains(t, d.GetDSN(), "host=db port=5432 user=u password=p dbname=cms sslmode=disable")
}

func TestSplitOrigins(t *testing.T) {
	c := CORSConfig{AllowOrigins: "https://a.in, https://b.in ,"}
	assert.Equal(t, []string{"https://a.in", "https://b.in"}, c.SplitOrigins())
}
