package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/navigo"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(env(map[string]string{"NAVIGO_GRAPH": "graph.bin"}))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, navigo.DefaultHeapCapacity, cfg.HeapCapacity)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)

	cfg, err = loadConfig(env(map[string]string{
		"NAVIGO_GRAPH":         "s3://maps/bw",
		"NAVIGO_ADDR":          "127.0.0.1:9000",
		"NAVIGO_HEAP_CAPACITY": "5000",
		"NAVIGO_LOG_LEVEL":     "debug",
		"NAVIGO_PROBE_TIMEOUT": "250ms",
		"NAVIGO_MINIO_USE_SSL": "true",
		"NAVIGO_CATALOG_TABLE": "graphs",
	}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 5000, cfg.HeapCapacity)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.ProbeTimeout)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, "graphs", cfg.CatalogTable)
}

func TestLoadConfig_Invalid(t *testing.T) {
	for name, m := range map[string]map[string]string{
		"missing graph": {},
		"heap":          {"NAVIGO_GRAPH": "g", "NAVIGO_HEAP_CAPACITY": "-1"},
		"log level":     {"NAVIGO_GRAPH": "g", "NAVIGO_LOG_LEVEL": "loud"},
		"timeout":       {"NAVIGO_GRAPH": "g", "NAVIGO_PROBE_TIMEOUT": "soon"},
		"ssl":           {"NAVIGO_GRAPH": "g", "NAVIGO_MINIO_USE_SSL": "maybe"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := loadConfig(env(m))
			assert.Error(t, err)
		})
	}
}

func TestParseGraphLocation(t *testing.T) {
	loc, err := parseGraphLocation("/data/bw.bin")
	require.NoError(t, err)
	assert.Equal(t, graphLocation{Path: "/data/bw.bin"}, loc)

	loc, err = parseGraphLocation("s3://maps/graphs/bw.bin")
	require.NoError(t, err)
	assert.Equal(t, graphLocation{Scheme: "s3", Bucket: "maps", Key: "graphs/bw.bin"}, loc)

	loc, err = parseGraphLocation("minio://maps/bw.bin.zst")
	require.NoError(t, err)
	assert.Equal(t, "minio", loc.Scheme)

	for _, bad := range []string{"ftp://host/x", "s3://bucket", "s3:///key"} {
		_, err := parseGraphLocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolveSource(t *testing.T) {
	ctx := context.Background()

	src, err := resolveSource(ctx, serverConfig{Graph: "/tmp/graph.bin"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/graph.bin", src.String())

	_, err = resolveSource(ctx, serverConfig{Graph: "minio://maps/bw.bin"})
	assert.ErrorContains(t, err, "NAVIGO_MINIO_ENDPOINT")

	src, err = resolveSource(ctx, serverConfig{
		Graph:          "minio://maps/bw.bin",
		MinioEndpoint:  "localhost:9000",
		MinioAccessKey: "minioadmin",
		MinioSecretKey: "minioadmin",
	})
	require.NoError(t, err)
	assert.Equal(t, "blob:bw.bin", src.String())
}
