package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	Redis  *redis.Client
	Logger *slog.Logger
}

type Option func(context.Context, *Dependencies) error

func (d *Dependencies) Close() {
	if d == nil {
		return
	}

	if d.Redis != nil {
		d.Redis.Close()
	}
}

func NewDependencies(ctx context.Context, opts ...Option) (deps *Dependencies, err error) {
	defer func() {
		if err != nil {
			deps.Close()
		}
	}()

	deps = &Dependencies{}

	for _, opt := range opts {
		if err := opt(ctx, deps); err != nil {
			return deps, err
		}
	}

	return deps, nil
}

func WithRedis(addr string, db int) Option {
	return func(ctx context.Context, d *Dependencies) error {
		client := redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("redis %s: %w", addr, err)
		}

		d.Redis = client
		return nil
	}
}

func ParseLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(strings.ToUpper(level)))
	return lvl, err
}

func WithLogger(w io.Writer, level string) Option {
	return func(_ context.Context, d *Dependencies) error {
		logLvl, err := ParseLevel(level)
		if err != nil {
			return fmt.Errorf("log level %q: %w", level, err)
		}

		logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: logLvl,
		}))
		slog.SetDefault(logger)
		d.Logger = logger
		return nil
	}
}
