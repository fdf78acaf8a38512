package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/navigo"
	miniostore "github.com/hupe1980/navigo/blobstore/minio"
	s3store "github.com/hupe1980/navigo/blobstore/s3"
)

// serverConfig is read from the environment, optionally seeded by a .env file.
type serverConfig struct {
	Graph        string
	Addr         string
	HeapCapacity int
	LogLevel     slog.Level
	ProbeTimeout time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool

	// CatalogTable resolves s3:// graph names through the DynamoDB catalog.
	CatalogTable string
}

func loadConfig(getenv func(string) string) (serverConfig, error) {
	cfg := serverConfig{
		Graph:        getenv("NAVIGO_GRAPH"),
		Addr:         getenv("NAVIGO_ADDR"),
		HeapCapacity: navigo.DefaultHeapCapacity,
		LogLevel:     slog.LevelInfo,
		ProbeTimeout: 2 * time.Second,

		MinioEndpoint:  getenv("NAVIGO_MINIO_ENDPOINT"),
		MinioAccessKey: getenv("NAVIGO_MINIO_ACCESS_KEY"),
		MinioSecretKey: getenv("NAVIGO_MINIO_SECRET_KEY"),
		CatalogTable:   getenv("NAVIGO_CATALOG_TABLE"),
	}

	if cfg.Graph == "" {
		return cfg, fmt.Errorf("NAVIGO_GRAPH is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	if v := getenv("NAVIGO_HEAP_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid NAVIGO_HEAP_CAPACITY %q", v)
		}
		cfg.HeapCapacity = n
	}

	if v := getenv("NAVIGO_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("invalid NAVIGO_LOG_LEVEL: %w", err)
		}
	}

	if v := getenv("NAVIGO_PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid NAVIGO_PROBE_TIMEOUT: %w", err)
		}
		cfg.ProbeTimeout = d
	}

	if v := getenv("NAVIGO_MINIO_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid NAVIGO_MINIO_USE_SSL: %w", err)
		}
		cfg.MinioUseSSL = b
	}

	return cfg, nil
}

// graphLocation is a parsed NAVIGO_GRAPH value.
type graphLocation struct {
	Scheme string // "", "s3" or "minio"
	Bucket string
	Key    string
	Path   string
}

func parseGraphLocation(s string) (graphLocation, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return graphLocation{Path: s}, nil
	}
	switch scheme {
	case "s3", "minio":
	default:
		return graphLocation{}, fmt.Errorf("unsupported graph scheme %q", scheme)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return graphLocation{}, fmt.Errorf("graph location %q needs a bucket and a key", s)
	}
	return graphLocation{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

func resolveSource(ctx context.Context, cfg serverConfig) (navigo.Source, error) {
	loc, err := parseGraphLocation(cfg.Graph)
	if err != nil {
		return navigo.Source{}, err
	}

	switch loc.Scheme {
	case "s3":
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return navigo.Source{}, fmt.Errorf("load aws config: %w", err)
		}
		key := loc.Key
		if cfg.CatalogTable != "" {
			catalog := s3store.NewCatalog(dynamodb.NewFromConfig(awsCfg), cfg.CatalogTable)
			entry, err := catalog.Current(ctx, loc.Key)
			if err != nil {
				return navigo.Source{}, fmt.Errorf("resolve %q in catalog: %w", loc.Key, err)
			}
			key = entry.Key
		}
		store := s3store.NewStore(awss3.NewFromConfig(awsCfg), loc.Bucket, "")
		return navigo.Remote(store, key), nil

	case "minio":
		if cfg.MinioEndpoint == "" {
			return navigo.Source{}, fmt.Errorf("NAVIGO_MINIO_ENDPOINT is required for %s", cfg.Graph)
		}
		client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
			Secure: cfg.MinioUseSSL,
		})
		if err != nil {
			return navigo.Source{}, fmt.Errorf("minio client: %w", err)
		}
		return navigo.Remote(miniostore.NewStore(client, loc.Bucket, ""), loc.Key), nil

	default:
		return navigo.Local(loc.Path), nil
	}
}
