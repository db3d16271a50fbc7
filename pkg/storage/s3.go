package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

const (
	// MaxAssetSize is the maximum allowed size for a rendered creative asset (25MB).
	MaxAssetSize = 25 * 1024 * 1024
	// FolderCreatives is the S3 prefix for creative asset objects.
	FolderCreatives = "creatives"
)

// Content types produced by the render backends, mapped to extensions.
var assetExtensions = map[string]string{
	"image/webp": ".webp",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

// S3Config holds S3 client configuration.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	AssetsBucket    string
}

// S3 stores and removes creative assets in the assets bucket.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or .env (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY).
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		if logger != nil {
			logger.Info("S3 client using credentials from .env/config", zap.String("region", cfg.Region), zap.String("assets_bucket", cfg.AssetsBucket))
		}
	} else if logger != nil {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024 // 5MB parts for streaming
	})
	return &S3{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ExtensionForContentType returns the file extension for a renderer content type.
func ExtensionForContentType(contentType string) string {
	if ext, ok := assetExtensions[strings.ToLower(contentType)]; ok {
		return ext
	}
	return ".bin"
}

// AssetKey returns the S3 object key for a creative: creatives/{bundle_id}/{creative_id}{ext}.
func AssetKey(bundleID, creativeID, contentType string) string {
	return path.Join(FolderCreatives, bundleID, creativeID+ExtensionForContentType(contentType))
}

// Upload stores rendered asset bytes in the assets bucket and returns the
// public object URL. Objects are public-read so ad platforms can fetch them.
func (s *S3) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if len(body) > MaxAssetSize {
		return "", fmt.Errorf("asset %s exceeds max size (%d bytes)", key, len(body))
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AssetsBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return s.PublicObjectURL(key), nil
}

// PublicObjectURL returns the public URL for an object in the assets bucket.
func (s *S3) PublicObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AssetsBucket, s.cfg.Region, key)
}

// DeleteObject removes an object from the assets bucket.
func (s *S3) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.AssetsBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// DeleteBundleAssets removes every asset under a bundle prefix.
func (s *S3) DeleteBundleAssets(ctx context.Context, bundleID string) error {
	prefix := path.Join(FolderCreatives, bundleID) + "/"
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.AssetsBucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return fmt.Errorf("list bundle assets: %w", err)
	}
	for _, obj := range out.Contents {
		if obj.Key == nil {
			continue
		}
		if err := s.DeleteObject(ctx, *obj.Key); err != nil {
			return err
		}
	}
	return nil
}

