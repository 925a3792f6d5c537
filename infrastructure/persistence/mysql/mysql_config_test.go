package mysql

import (
	"testing"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"jewelry/config"
)

func TestConfigDSN(t *testing.T) {
	c := &Config{
		Host:     "db.internal",
		Port:     "3306",
		Username: "shop",
		Password: "p@ss:word",
		Database: "jewelry",
	}

	parsed, err := mysqlDriver.ParseDSN(c.DSN())
	require.NoError(t, err)

	assert.Equal(t, "shop", parsed.User)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "db.internal:3306", parsed.Addr)
	assert.Equal(t, "jewelry", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
}

func TestConfigApplyDefaults(t *testing.T) {
	c := &Config{MaxOpenConns: 4, MaxIdleConns: 8}
	c.applyDefaults()

	assert.Equal(t, 4, c.MaxOpenConns)
	assert.Equal(t, 4, c.MaxIdleConns)
	assert.Equal(t, DefaultConnMaxLifetime, c.ConnMaxLifetime)
	assert.Equal(t, DefaultConnMaxIdleTime, c.ConnMaxIdleTime)
}

func TestConfigFrom(t *testing.T) {
	c := ConfigFrom(config.DatabaseConfig{
		Host:            "db.internal",
		Port:            "3307",
		Username:        "shop",
		Database:        "jewelry",
		LogLevel:        "info",
		MaxOpenConns:    12,
		ConnMaxLifetime: time.Minute,
		SlowQuery:       50 * time.Millisecond,
	})

	assert.Equal(t, "db.internal", c.Host)
	assert.Equal(t, "3307", c.Port)
	assert.Equal(t, 12, c.MaxOpenConns)
	assert.Equal(t, time.Minute, c.ConnMaxLifetime)
	assert.Equal(t, 50*time.Millisecond, c.SlowQuery)
	assert.Equal(t, gormlogger.Info, c.parseLogLevel())

	empty := &Config{}
	empty.applyDefaults()
	assert.Equal(t, DefaultSlowQuery, empty.SlowQuery)
}
