// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"rosetta/cli/internal/logging"
)

// MirrorConfig selects an optional remote copy of the durable records.
type MirrorConfig struct {
	Kind      string `yaml:"kind"` // none, s3 or azure
	Prefix    string `yaml:"prefix,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Region    string `yaml:"region,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	UseSSL    bool   `yaml:"use_ssl,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`

	Container        string `yaml:"container,omitempty"`
	ConnectionString string `yaml:"connection_string,omitempty"`
}

// NewMirror builds the sink described by cfg, or nil when no mirror is configured.
func NewMirror(logger logging.Logger, cfg MirrorConfig) (Sink, error) {
	switch cfg.Kind {
	case "", "none":
		return nil, nil
	case "s3":
		s, err := NewS3(logger, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "azure":
		a, err := NewAzure(logger, cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown storage mirror kind %q", cfg.Kind)
	}
}

var _ Sink = &S3{}

// S3 mirrors records into an S3-compatible bucket.
type S3 struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3 connects to the bucket named by cfg.
func NewS3(logger logging.Logger, cfg MirrorConfig) (*S3, error) {
	if cfg.Bucket == "" || cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 mirror needs bucket and endpoint")
	}
	var creds *credentials.Credentials
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewFileAWSCredentials("", "")
	}

	lookup := minio.BucketLookupDNS
	if cfg.PathStyle {
		lookup = minio.BucketLookupPath
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Region:       cfg.Region,
		Creds:        creds,
		Secure:       cfg.UseSSL,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize S3 client: %w", err)
	}
	logger.Debugf("S3 mirror initialized with bucket %q", cfg.Bucket)
	return &S3{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Name identifies the sink in logs.
func (s *S3) Name() string { return "s3://" + path.Join(s.bucket, s.prefix) }

// Put uploads data as a JSON object under the prefix.
func (s *S3) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, path.Join(s.prefix, key), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

var _ Sink = &Azure{}

// Azure mirrors records into an Azure Blob Storage container.
type Azure struct {
	client    *azblob.Client
	container string
	prefix    string
}

// NewAzure connects to the container named by cfg.
func NewAzure(logger logging.Logger, cfg MirrorConfig) (*Azure, error) {
	if cfg.Container == "" || cfg.ConnectionString == "" {
		return nil, fmt.Errorf("azure mirror needs container and connection_string")
	}
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize Azure Blob client: %w", err)
	}
	logger.Debugf("Azure Blob mirror initialized with container %q", cfg.Container)
	return &Azure{client: client, container: cfg.Container, prefix: cfg.Prefix}, nil
}

// Name identifies the sink in logs.
func (a *Azure) Name() string { return "azblob://" + path.Join(a.container, a.prefix) }

// Put uploads data as a block blob under the prefix.
func (a *Azure) Put(ctx context.Context, key string, data []byte) error {
	if _, err := a.client.UploadBuffer(ctx, a.container, path.Join(a.prefix, key), data, nil); err != nil {
		return fmt.Errorf("upload blob: %w", err)
	}
	return nil
}
