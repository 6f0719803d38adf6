package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_GetDSN(t *testing.T) {
	pg := &DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "ica", Password: "secret", Database: "fito", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=ica password=secret dbname=fito sslmode=disable", pg.GetDSN())

	lite := &DatabaseConfig{Driver: "sqlite", Path: "/tmp/fito.db"}
	assert.Equal(t, "/tmp/fito.db", lite.GetDSN())
}

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "SQLite")
	t.Setenv("TEST_DB_PORT", "6543")
	t.Setenv("TEST_DB_PATH", "local.db")
	t.Setenv("TEST_DB_MAX_CONNS", "4")

	cfg := &DatabaseConfig{Driver: "postgres", Port: 5432}
	cfg.LoadFromEnv("TEST_DB")

	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "local.db", cfg.Path)
	assert.Equal(t, 4, cfg.MaxConns)
}

func TestMQTTConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("TEST_MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("TEST_MQTT_QOS", "1")

	cfg := &MQTTConfig{}
	cfg.LoadFromEnv("TEST_MQTT")

	assert.Equal(t, "tcp://broker:1883", cfg.Broker)
	assert.Equal(t, byte(1), cfg.QoS)
}
