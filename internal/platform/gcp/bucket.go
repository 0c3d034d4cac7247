package gcp

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"

	"github.com/yungbote/model3d-backend/internal/platform/apierr"
	"github.com/yungbote/model3d-backend/internal/platform/httpx"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

const serviceName = "gcs"

// objectStore is the slice of the storage client the publisher needs.
type objectStore interface {
	Put(ctx context.Context, bucket, key, contentType string, data []byte) error
	Close() error
}

type gcsStore struct {
	client *storage.Client
}

func (s *gcsStore) Put(ctx context.Context, bucket, key, contentType string, data []byte) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *gcsStore) Close() error { return s.client.Close() }

// BucketPublisher stores uploaded animal photos in a public bucket and hands
// back their public URL. It is the alternative to the image host.
type BucketPublisher struct {
	log   *logger.Logger
	cfg   ObjectStorageConfig
	store objectStore
	obs   httpx.Observer
}

func NewBucketPublisher(ctx context.Context, log *logger.Logger, cfg ObjectStorageConfig, obs httpx.Observer) (*BucketPublisher, error) {
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClientForMode(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return newBucketPublisher(log, cfg, &gcsStore{client: client}, obs), nil
}

func newBucketPublisher(log *logger.Logger, cfg ObjectStorageConfig, store objectStore, obs httpx.Observer) *BucketPublisher {
	if log == nil {
		log = logger.Nop()
	}
	cfg.Prefix = strings.Trim(strings.TrimSpace(cfg.Prefix), "/")
	p := &BucketPublisher{
		log:   log.With("service", "BucketPublisher"),
		cfg:   cfg,
		store: store,
		obs:   httpx.ObserverOrNop(obs),
	}
	p.log.Info("Object storage initialized",
		"mode", cfg.Mode,
		"bucket", cfg.Bucket,
		"cdn_domain", cfg.CDNDomain,
		"prefix", cfg.Prefix,
	)
	return p
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/") + "/storage/v1/"
		return storage.NewClient(ctx, option.WithoutAuthentication(), option.WithEndpoint(endpoint))
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func (p *BucketPublisher) Publish(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apierr.Validation("empty_image", "image data is empty")
	}
	ctx, span := otel.Tracer("gcs").Start(ctx, "gcs.Publish")
	defer span.End()

	key := p.objectKey(filename)
	span.SetAttributes(attribute.String("gcs.key", key), attribute.Int("image.bytes", len(data)))

	putCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	start := time.Now()
	if err := p.store.Put(putCtx, p.cfg.Bucket, key, contentTypeForKey(key), data); err != nil {
		p.obs.ObserveUpstream(serviceName, "error", time.Since(start).Seconds())
		span.RecordError(err)
		return "", apierr.New(apierr.KindUpstreamPublishing, "gcs_upload_failed", err)
	}
	p.obs.ObserveUpstream(serviceName, "200", time.Since(start).Seconds())
	return p.PublicURL(key), nil
}

func (p *BucketPublisher) Close() error {
	if p == nil || p.store == nil {
		return nil
	}
	return p.store.Close()
}

func (p *BucketPublisher) objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	if contentTypeForKey("x"+ext) == "" {
		ext = ".jpg"
	}
	key := uuid.New().String() + ext
	if p.cfg.Prefix != "" {
		key = p.cfg.Prefix + "/" + key
	}
	return key
}

func (p *BucketPublisher) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if p.cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimRight(p.cfg.CDNDomain, "/"), key)
	}
	if base := strings.TrimRight(strings.TrimSpace(p.cfg.PublicBaseURL), "/"); base != "" {
		return fmt.Sprintf("%s/%s/%s", base, p.cfg.Bucket, key)
	}
	if p.cfg.IsEmulatorMode() {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media",
			strings.TrimRight(p.cfg.EmulatorHost, "/"), url.PathEscape(p.cfg.Bucket), url.PathEscape(key))
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", p.cfg.Bucket, key)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	default:
		return ""
	}
}
