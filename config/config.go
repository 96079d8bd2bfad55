package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type (
	Market struct {
		S0    float64
		K     float64
		T     float64
		R     float64
		Q     float64
		Sigma float64
	}

	Simulation struct {
		MCPaths   int
		LSMCPaths int
		LSMCSteps int
		Nodes     int
		Bump      float64 // Spot bump for Greeks; 1% of S0 when unset
		Seed      uint64
	}

	Output struct {
		Decimals int32
		Sweeps   bool
		Path     string
	}

	Redis struct {
		Addr string
		DB   int
	}

	Config struct {
		Style      string
		OptionType string
		Market     Market
		Simulation Simulation
		Output     Output
		Redis      Redis
		LogLevel   string
	}
)

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}
	var p parser

	cfg.Style = getEnv("OPT_STYLE", "European")
	cfg.OptionType = getEnv("OPT_TYPE", "Call")

	cfg.Market.S0 = p.getFloat("OPT_S0", 100)
	cfg.Market.K = p.getFloat("OPT_K", 95)
	cfg.Market.T = p.getFloat("OPT_T", 0.25)
	cfg.Market.R = p.getFloat("OPT_R", 0.05)
	cfg.Market.Q = p.getFloat("OPT_Q", 0.01)
	cfg.Market.Sigma = p.getFloat("OPT_SIGMA", 0.25)

	cfg.Simulation.MCPaths = p.getInt("OPT_MC_PATHS", 10000)
	cfg.Simulation.LSMCPaths = p.getInt("OPT_LSMC_PATHS", 10000)
	cfg.Simulation.LSMCSteps = p.getInt("OPT_LSMC_STEPS", 100)
	cfg.Simulation.Nodes = p.getInt("OPT_NODES", 100)
	cfg.Simulation.Bump = p.getFloat("OPT_BUMP", 0.01*cfg.Market.S0)
	cfg.Simulation.Seed = p.getUint("OPT_SEED", 69)

	cfg.Output.Decimals = int32(p.getInt("OPT_DECIMALS", 3))
	cfg.Output.Sweeps = p.getBool("OPT_SWEEPS", false)
	cfg.Output.Path = getEnv("OPT_OUTPUT", "optpricer.json")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.DB = p.getInt("REDIS_DB", 0)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}

	return defaultValue
}

// parser keeps the first malformed variable so Load reports it once.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config: %s=%q: %w", key, value, err)
	}
}

func (p *parser) getFloat(key string, def float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) getInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) getUint(key string, def uint64) uint64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) getBool(key string, def bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}
