package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// Artifact is a deployed contract description: its address and ABI.
type Artifact struct {
	Address string          `json:"address"`
	ABI     json.RawMessage `json:"abi"`
}

// Validate checks the artifact carries a well-formed address and a usable ABI.
func (a *Artifact) Validate() error {
	if a.Address != "" && !common.IsHexAddress(a.Address) {
		return fmt.Errorf("invalid contract address %q", a.Address)
	}
	if len(a.ABI) == 0 {
		return fmt.Errorf("contract artifact has no ABI")
	}
	if _, err := ParseABI(a.ABI); err != nil {
		return err
	}
	return nil
}

// ArtifactLoader loads a contract artifact from a path or object key.
type ArtifactLoader interface {
	Load(ctx context.Context, path string) (*Artifact, error)
}

func decodeArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode contract artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// fileLoader reads contract artifacts from the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based artifact loader.
func NewFileLoader(logger zerolog.Logger) ArtifactLoader {
	return &fileLoader{
		logger: logger.With().Str("component", "artifact-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, path string) (*Artifact, error) {
	l.logger.Info().Str("file", path).Msg("loading contract artifact")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open contract artifact")
		return nil, fmt.Errorf("failed to open contract artifact %s: %w", path, err)
	}
	defer file.Close()

	a, err := decodeArtifact(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("invalid contract artifact")
		return nil, err
	}
	return a, nil
}

// s3Loader reads contract artifacts from AWS S3.
type s3Loader struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

// NewS3Loader creates a new S3-based artifact loader.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (ArtifactLoader, error) {
	logger = logger.With().Str("component", "s3-artifact-loader").Logger()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 loader initialised")

	return &s3Loader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		logger: logger,
	}, nil
}

// Load reads an artifact object. key is the full S3 key including any prefix.
func (l *s3Loader) Load(ctx context.Context, key string) (*Artifact, error) {
	l.logger.Info().
		Str("bucket", l.bucket).
		Str("key", key).
		Msg("loading contract artifact from S3")

	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", key).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer result.Body.Close()

	return decodeArtifact(result.Body)
}

// fallbackLoader tries S3 first, then the local file system.
type fallbackLoader struct {
	s3Loader   ArtifactLoader
	fileLoader ArtifactLoader
	s3Prefix   string
	s3Enabled  bool
	logger     zerolog.Logger
}

// NewFallbackLoader creates a loader that tries S3 first, then falls back to local file system.
// If s3Loader is nil, it will only use the file loader.
func NewFallbackLoader(s3Loader, fileLoader ArtifactLoader, s3Prefix string, s3Enabled bool, logger zerolog.Logger) ArtifactLoader {
	return &fallbackLoader{
		s3Loader:   s3Loader,
		fileLoader: fileLoader,
		s3Prefix:   s3Prefix,
		s3Enabled:  s3Enabled,
		logger:     logger.With().Str("component", "fallback-loader").Logger(),
	}
}

// Load prepends the S3 prefix for the S3 attempt and uses path as-is locally.
func (l *fallbackLoader) Load(ctx context.Context, path string) (*Artifact, error) {
	if l.s3Enabled && l.s3Loader != nil {
		key := l.s3Prefix + path

		a, err := l.s3Loader.Load(ctx, key)
		if err == nil {
			l.logger.Info().Str("s3_key", key).Msg("successfully loaded from S3")
			return a, nil
		}

		l.logger.Warn().
			Err(err).
			Str("s3_key", key).
			Msg("failed to load from S3, falling back to local file system")
	}

	return l.fileLoader.Load(ctx, path)
}
