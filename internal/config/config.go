// Package config reads hypergraph settings from HYPERGRAPH_* environment
// variables.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alfredjeanlab/hypergraph/internal/idgen"
	"github.com/alfredjeanlab/hypergraph/internal/snapshot"
)

type Config struct {
	IDStrategy string     // HYPERGRAPH_ID_STRATEGY (default "uuid")
	IDPrefix   string     // HYPERGRAPH_ID_PREFIX (nanoid and sequence only)
	Types      string     // HYPERGRAPH_TYPES (optional glob of descriptor files)
	NATSURL    string     // HYPERGRAPH_NATS_URL (optional, empty = no events)
	LogLevel   slog.Level // HYPERGRAPH_LOG_LEVEL (default "info")

	// Sync settings
	SyncInterval   time.Duration // HYPERGRAPH_SYNC_INTERVAL (default 0 = one shot)
	SyncFile       string        // HYPERGRAPH_SYNC_FILE (enables a local file when set)
	SyncS3Bucket   string        // HYPERGRAPH_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // HYPERGRAPH_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // HYPERGRAPH_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // HYPERGRAPH_SYNC_S3_KEY (default "hypergraph/snapshot.jsonl")
	SyncGitRepo    string        // HYPERGRAPH_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // HYPERGRAPH_SYNC_GIT_FILE (default "hypergraph.jsonl")
	SyncGitBranch  string        // HYPERGRAPH_SYNC_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		IDStrategy:     envOrDefault("HYPERGRAPH_ID_STRATEGY", idgen.StrategyUUID),
		IDPrefix:       os.Getenv("HYPERGRAPH_ID_PREFIX"),
		Types:          os.Getenv("HYPERGRAPH_TYPES"),
		NATSURL:        os.Getenv("HYPERGRAPH_NATS_URL"),
		SyncFile:       os.Getenv("HYPERGRAPH_SYNC_FILE"),
		SyncS3Bucket:   os.Getenv("HYPERGRAPH_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("HYPERGRAPH_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("HYPERGRAPH_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("HYPERGRAPH_SYNC_S3_KEY", "hypergraph/snapshot.jsonl"),
		SyncGitRepo:    os.Getenv("HYPERGRAPH_SYNC_GIT_REPO"),
		SyncGitFile:    envOrDefault("HYPERGRAPH_SYNC_GIT_FILE", "hypergraph.jsonl"),
		SyncGitBranch:  envOrDefault("HYPERGRAPH_SYNC_GIT_BRANCH", "main"),
	}

	if _, err := idgen.FromStrategy(c.IDStrategy, c.IDPrefix); err != nil {
		return nil, fmt.Errorf("HYPERGRAPH_ID_STRATEGY: %w", err)
	}

	if err := c.LogLevel.UnmarshalText([]byte(envOrDefault("HYPERGRAPH_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("HYPERGRAPH_LOG_LEVEL: %w", err)
	}

	if intervalStr := os.Getenv("HYPERGRAPH_SYNC_INTERVAL"); intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("HYPERGRAPH_SYNC_INTERVAL: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("HYPERGRAPH_SYNC_INTERVAL: negative duration %s", d)
		}
		c.SyncInterval = d
	}

	return c, nil
}

// IDGenerator returns the generator selected by IDStrategy and IDPrefix.
func (c *Config) IDGenerator() (idgen.Generator, error) {
	return idgen.FromStrategy(c.IDStrategy, c.IDPrefix)
}

// Logger returns a text logger writing to w at LogLevel.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

// Destinations builds the sync destinations that are configured. The S3
// destination loads AWS credentials from the default chain.
func (c *Config) Destinations(ctx context.Context) ([]snapshot.Destination, error) {
	var dests []snapshot.Destination
	if c.SyncFile != "" {
		dests = append(dests, snapshot.NewFileDestination(c.SyncFile))
	}
	if c.SyncS3Bucket != "" {
		s3dest, err := snapshot.NewS3Destination(ctx, c.SyncS3Bucket, c.SyncS3Key, c.SyncS3Region, c.SyncS3Endpoint)
		if err != nil {
			return nil, fmt.Errorf("s3 destination: %w", err)
		}
		dests = append(dests, s3dest)
	}
	if c.SyncGitRepo != "" {
		dests = append(dests, snapshot.NewGitDestination(c.SyncGitRepo, c.SyncGitFile, c.SyncGitBranch))
	}
	return dests, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
