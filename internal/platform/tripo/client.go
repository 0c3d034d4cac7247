package tripo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/yungbote/model3d-backend/internal/platform/apierr"
	"github.com/yungbote/model3d-backend/internal/platform/envutil"
	"github.com/yungbote/model3d-backend/internal/platform/httpx"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

const serviceName = "tripo"

// Generation options sent with every task. They are fixed for the whole
// deployment so every animal mesh looks alike.
const (
	TaskType       = "image_to_model"
	ModelVersion   = "v2.5-20250123"
	Texture        = true
	TextureQuality = "standard"
	Orientation    = "align_image"
	StylePreset    = "object:clay"
)

// Client submits image-to-model tasks. CreateTask returns the provider's
// reply body untouched; interpreting it is the caller's job.
type Client interface {
	CreateTask(ctx context.Context, imageURL string) (string, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RateLimit is the sustained number of task submissions per second.
	// Zero or negative disables limiting.
	RateLimit float64
	Burst     int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:    envutil.String("TRIPO_API_KEY", ""),
		BaseURL:   envutil.String("TRIPO_BASE_URL", ""),
		Timeout:   time.Duration(envutil.Int("TRIPO_TIMEOUT_SECONDS", 30)) * time.Second,
		RateLimit: envutil.Float("TRIPO_RATE_LIMIT_RPS", 2),
		Burst:     envutil.Int("TRIPO_RATE_LIMIT_BURST", 4),
	}
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	obs        httpx.Observer
}

func New(log *logger.Logger, cfg Config, obs httpx.Observer) Client {
	if log == nil {
		log = logger.Nop()
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.tripo3d.ai"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	clientLog := log.With("client", "TripoClient")
	if cfg.APIKey == "" {
		clientLog.Warn("TRIPO_API_KEY not set; task creation will fail")
	}
	return &client{
		log:        clientLog,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		obs:        httpx.ObserverOrNop(obs),
	}
}

type taskFile struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type createTaskRequest struct {
	Type           string   `json:"type"`
	ModelVersion   string   `json:"model_version"`
	File           taskFile `json:"file"`
	Texture        bool     `json:"texture"`
	TextureQuality string   `json:"texture_quality"`
	Orientation    string   `json:"orientation"`
	Style          string   `json:"style"`
}

// Options returns the fixed generation options, as sent on the wire.
func Options() map[string]any {
	return map[string]any{
		"model_version":   ModelVersion,
		"texture":         Texture,
		"texture_quality": TextureQuality,
		"orientation":     Orientation,
		"style":           StylePreset,
	}
}

func (c *client) CreateTask(ctx context.Context, imageURL string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", apierr.Configuration("tripo_missing_key", "mesh provider credential TRIPO_API_KEY is not configured")
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return "", apierr.Validation("image_url_required", "image_url is required")
	}

	ctx, span := otel.Tracer("tripo").Start(ctx, "tripo.CreateTask")
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return "", apierr.New(apierr.KindUpstream, "tripo_rate_limited", fmt.Errorf("tripo rate limiter: %w", err))
		}
	}

	wire := createTaskRequest{
		Type:           TaskType,
		ModelVersion:   ModelVersion,
		File:           taskFile{Type: fileTypeFromURL(imageURL), URL: imageURL},
		Texture:        Texture,
		TextureQuality: TextureQuality,
		Orientation:    Orientation,
		Style:          StylePreset,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(wire); err != nil {
		return "", apierr.New(apierr.KindInternal, "tripo_encode", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/openapi/task", &buf)
	if err != nil {
		return "", apierr.New(apierr.KindUpstream, "tripo_request_build", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.obs.ObserveUpstream(serviceName, "error", time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		code := "tripo_transport"
		if httpx.IsTimeout(err) {
			code = "tripo_timeout"
		}
		return "", apierr.New(apierr.KindUpstream, code, fmt.Errorf("tripo create task: %w", err))
	}
	raw, readErr := httpx.ReadBody(resp, 4<<20)
	c.obs.ObserveUpstream(serviceName, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if readErr != nil {
		span.RecordError(readErr)
		code := "tripo_read_body"
		if errors.Is(readErr, httpx.ErrBodyTooLarge) {
			code = "tripo_reply_too_large"
		}
		return "", apierr.New(apierr.KindUpstream, code, fmt.Errorf("tripo read reply: %w", readErr))
	}
	body := string(raw)

	if !httpx.IsSuccess(resp.StatusCode) {
		span.SetStatus(codes.Error, "status")
		err := classifyStatus(resp.StatusCode, raw)
		c.log.Warn("Tripo task creation rejected",
			"status", resp.StatusCode,
			"error_code", apierr.CodeOf(err),
			"reply", httpx.Truncate(body, 500),
		)
		return "", err
	}
	return body, nil
}

type providerError struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// classifyStatus maps a non-2xx reply onto an error kind.
func classifyStatus(status int, raw []byte) error {
	body := string(raw)
	cause := &httpx.StatusError{Service: serviceName, StatusCode: status, Body: body}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apierr.New(apierr.KindAuthentication, "tripo_unauthorized", cause).WithRaw(body)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		explanation := explain(raw)
		return apierr.New(apierr.KindRequestRejected, "tripo_request_rejected",
			fmt.Errorf("tripo rejected the request: %s: %w", explanation, cause)).WithRaw(body)
	default:
		return apierr.New(apierr.KindUpstream, "tripo_http_status", cause).WithRaw(body)
	}
}

func explain(raw []byte) string {
	var pe providerError
	if err := json.Unmarshal(raw, &pe); err == nil {
		msg := strings.TrimSpace(pe.Message)
		if s := strings.TrimSpace(pe.Suggestion); s != "" {
			if msg != "" {
				msg += " (" + s + ")"
			} else {
				msg = s
			}
		}
		if msg != "" {
			return msg
		}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "no explanation given"
	}
	return httpx.Truncate(msg, 500)
}

func fileTypeFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case "png":
		return "png"
	case "webp":
		return "webp"
	default:
		return "jpg"
	}
}
