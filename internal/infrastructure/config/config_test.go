package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "fdc-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	assert.NotEmpty(t, cfg.HTTP.CORSAllowMethods)
}

func TestValidate_PoolSettings(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.MaxIdleConns = 50
	cfg.Database.MaxOpenConns = 10

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_idle_conns")
}

func TestValidate_ProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestValidate_RateBounds(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Tax.DiminishingValueRate = 1.5

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diminishing_value_rate")
}

func TestTaxConfig_RatesDefaults(t *testing.T) {
	rates := TaxConfig{}.Rates()

	assert.True(t, rates.CentsPerKMRate.Equal(decimal.NewFromFloat(0.85)))
	assert.True(t, rates.CentsPerKMMax.Equal(decimal.NewFromInt(5000)))
	assert.True(t, rates.CarDepreciationLimit.Equal(decimal.NewFromInt(68108)))
}

func TestTaxConfig_RatesOverride(t *testing.T) {
	rates := TaxConfig{
		CentsPerKMRate:  0.88,
		CentsPerKMMaxKM: 6000,
	}.Rates()

	assert.True(t, rates.CentsPerKMRate.Equal(decimal.NewFromFloat(0.88)))
	assert.True(t, rates.CentsPerKMMax.Equal(decimal.NewFromInt(6000)))
	// Untouched fields keep the built-in values
	assert.True(t, rates.GSTDivisor.Equal(decimal.NewFromInt(11)))
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "fdc",
		Password: "p@ss/word",
		DBName:   "fdc",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}
