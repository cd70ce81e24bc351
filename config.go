package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tim25651/repo-utilities/apt"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

// FileConfig is the optional YAML build configuration. Every field
// falls back to an environment variable, then to the stock default.
type FileConfig struct {
	Origin      string   `yaml:"origin"`
	Label       string   `yaml:"label"`
	Version     string   `yaml:"version"`
	Components  string   `yaml:"components"`
	Description string   `yaml:"description"`
	Suite       string   `yaml:"suite"`
	Arches      []string `yaml:"arches"`
	S3          *s3FileConfig    `yaml:"s3"`
}

type s3FileConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
}

func loadFileConfig(path string) (*FileConfig, error) {
	cfg := &FileConfig{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig layers the file config and environment over a Builder's
// defaults.
func applyConfig(b *apt.Builder, cfg *FileConfig) error {
	if cfg.Suite != "" {
		b.Suite = cfg.Suite
		b.Meta = apt.DefaultReleaseMeta(cfg.Suite)
	}
	if len(cfg.Arches) > 0 {
		b.Arches = cfg.Arches
	}

	pick := func(dst *string, fileValue, envKey string) {
		if fileValue != "" {
			*dst = fileValue
		} else if v := os.Getenv(envKey); v != "" {
			*dst = v
		}
	}
	pick(&b.Meta.Origin, cfg.Origin, "REPO_ORIGIN")
	pick(&b.Meta.Label, cfg.Label, "REPO_LABEL")
	pick(&b.Meta.Version, cfg.Version, "REPO_VERSION")
	pick(&b.Meta.Components, cfg.Components, "REPO_COMPONENTS")
	pick(&b.Meta.Description, cfg.Description, "REPO_DESCRIPTION")

	s3cfg := apt.S3Config{
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Bucket:    os.Getenv("S3_BUCKET"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Region:    getEnv("S3_REGION", "us-east-1"),
	}
	if cfg.S3 != nil {
		s3cfg = apt.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Region:    cfg.S3.Region,
		}
	}
	if s3cfg.Endpoint != "" {
		if s3cfg.Bucket == "" {
			return fmt.Errorf("S3 endpoint set but bucket missing")
		}
		b.Publisher = apt.NewS3Publisher(s3cfg)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
