package imgbb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/model3d-backend/internal/platform/apierr"
	"github.com/yungbote/model3d-backend/internal/platform/envutil"
	"github.com/yungbote/model3d-backend/internal/platform/httpx"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

const serviceName = "imgbb"

// Client publishes raw image bytes to the public image host and returns the
// hosted URL.
type Client interface {
	Publish(ctx context.Context, filename string, data []byte) (string, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Expiration in seconds asks the host to drop the image later. Zero keeps it.
	Expiration int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     envutil.String("IMGBB_API_KEY", ""),
		BaseURL:    envutil.String("IMGBB_BASE_URL", ""),
		Timeout:    time.Duration(envutil.Int("IMGBB_TIMEOUT_SECONDS", 30)) * time.Second,
		Expiration: envutil.Int("IMGBB_EXPIRATION_SECONDS", 0),
	}
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	obs        httpx.Observer
}

// New never fails on a missing key: the first Publish reports it as a
// configuration error instead, so the rest of the service can still boot.
func New(log *logger.Logger, cfg Config, obs httpx.Observer) Client {
	if log == nil {
		log = logger.Nop()
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.imgbb.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	clientLog := log.With("client", "ImgBBClient")
	if cfg.APIKey == "" {
		clientLog.Warn("IMGBB_API_KEY not set; image publishing will fail")
	}
	return &client{
		log:        clientLog,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		obs:        httpx.ObserverOrNop(obs),
	}
}

type uploadReply struct {
	Data *struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

func (c *client) Publish(ctx context.Context, filename string, data []byte) (string, error) {
	if c.cfg.APIKey == "" {
		return "", apierr.Configuration("imgbb_missing_key", "image host credential IMGBB_API_KEY is not configured")
	}
	if len(data) == 0 {
		return "", apierr.Validation("empty_image", "image data is empty")
	}

	ctx, span := otel.Tracer("imgbb").Start(ctx, "imgbb.Publish")
	defer span.End()
	span.SetAttributes(attribute.Int("image.bytes", len(data)))

	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(data))
	if name := strings.TrimSuffix(filepath.Base(strings.TrimSpace(filename)), filepath.Ext(filename)); name != "" && name != "." {
		form.Set("name", name)
	}

	endpoint := c.cfg.BaseURL + "/1/upload?key=" + url.QueryEscape(c.cfg.APIKey)
	if c.cfg.Expiration > 0 {
		endpoint += "&expiration=" + strconv.Itoa(c.cfg.Expiration)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apierr.New(apierr.KindUpstreamPublishing, "imgbb_request_build", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.obs.ObserveUpstream(serviceName, "error", time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		code := "imgbb_transport"
		if httpx.IsTimeout(err) {
			code = "imgbb_timeout"
		}
		return "", apierr.New(apierr.KindUpstreamPublishing, code, fmt.Errorf("imgbb upload: %w", err))
	}
	raw, readErr := httpx.ReadBody(resp, 1<<20)
	c.obs.ObserveUpstream(serviceName, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if readErr != nil {
		span.RecordError(readErr)
		code := "imgbb_read_body"
		if errors.Is(readErr, httpx.ErrBodyTooLarge) {
			code = "imgbb_reply_too_large"
		}
		return "", apierr.New(apierr.KindUpstreamPublishing, code, fmt.Errorf("imgbb read reply: %w", readErr))
	}
	body := string(raw)

	if !httpx.IsSuccess(resp.StatusCode) {
		span.SetStatus(codes.Error, "status")
		return "", apierr.New(apierr.KindUpstreamPublishing, "imgbb_http_status",
			&httpx.StatusError{Service: serviceName, StatusCode: resp.StatusCode, Body: body}).WithRaw(body)
	}

	publicURL, err := parseUploadReply(raw)
	if err != nil {
		span.SetStatus(codes.Error, "reply")
		c.log.Warn("Image host reply unusable", "error", err, "reply", httpx.Truncate(body, 500))
		return "", err
	}
	c.log.Debug("Image published", "public_url", publicURL, "bytes", len(data))
	return publicURL, nil
}

func parseUploadReply(raw []byte) (string, error) {
	body := string(raw)
	var reply uploadReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", apierr.New(apierr.KindUpstreamPublishing, "imgbb_invalid_json",
			fmt.Errorf("imgbb reply is not JSON: %w", err)).WithRaw(body)
	}
	if reply.Data == nil || strings.TrimSpace(reply.Data.URL) == "" {
		return "", apierr.Newf(apierr.KindUpstreamPublishing, "imgbb_missing_url",
			"imgbb reply lacks data.url").WithRaw(body)
	}
	return strings.TrimSpace(reply.Data.URL), nil
}
