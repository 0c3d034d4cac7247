package gcp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yungbote/model3d-backend/internal/platform/envutil"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

type ObjectStorageConfig struct {
	Mode         ObjectStorageMode
	EmulatorHost string
	Bucket       string
	CDNDomain    string
	// PublicBaseURL overrides https://storage.googleapis.com when set.
	PublicBaseURL string
	// Prefix is prepended to every object key.
	Prefix string
}

func ObjectStorageConfigFromEnv() ObjectStorageConfig {
	return ObjectStorageConfig{
		Mode:          ObjectStorageMode(envutil.String("OBJECT_STORAGE_MODE", string(ObjectStorageModeGCS))),
		EmulatorHost:  envutil.String("STORAGE_EMULATOR_HOST", ""),
		Bucket:        envutil.String("MODEL3D_GCS_BUCKET_NAME", ""),
		CDNDomain:     envutil.String("MODEL3D_CDN_DOMAIN", ""),
		PublicBaseURL: envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", ""),
		Prefix:        envutil.String("MODEL3D_GCS_PREFIX", "animals/uploads"),
	}
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingBucket       ObjectStorageConfigErrorCode = "missing_bucket"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidURL          ObjectStorageConfigErrorCode = "invalid_url"
)

type ObjectStorageConfigError struct {
	Code  ObjectStorageConfigErrorCode
	Mode  string
	Value string
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", e.Mode, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorMissingBucket:
		return "missing env var MODEL3D_GCS_BUCKET_NAME"
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorInvalidURL:
		return fmt.Sprintf("invalid absolute URL %q", e.Value)
	default:
		return "invalid object storage config"
	}
}

func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	switch cfg.Mode {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
	default:
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingBucket, Mode: string(cfg.Mode)}
	}
	if cfg.IsEmulatorMode() {
		host := strings.TrimSpace(cfg.EmulatorHost)
		if host == "" {
			return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
		}
		if !isAbsoluteURL(host) {
			return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidURL, Mode: string(cfg.Mode), Value: host}
		}
	}
	if base := strings.TrimSpace(cfg.PublicBaseURL); base != "" && !isAbsoluteURL(base) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidURL, Mode: string(cfg.Mode), Value: base}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}
