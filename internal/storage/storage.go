package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"jobtracker_backend/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage keeps generated documents and uploads under slash-separated keys.
type Storage interface {
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every object under prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	URL(key string) string
}

type Config struct {
	Type      string // local, s3, cloudflare_r2
	BasePath  string
	BaseURL   string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	}
}

func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3", "cloudflare_r2":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// UserPrefix is the key prefix of every object owned by a user.
func UserPrefix(userID string) string {
	return "users/" + userID + "/"
}

func ResumePDFKey(userID, resumeID string) string {
	return UserPrefix(userID) + "resumes/" + resumeID + ".pdf"
}

func AvatarKey(userID, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return UserPrefix(userID) + "avatar." + ext
}

// cleanKey rejects keys that escape the storage root.
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if cleaned == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}
