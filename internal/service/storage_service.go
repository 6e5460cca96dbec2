package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"course_market_backend/internal/config"
	"course_market_backend/internal/model"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const lessonURLExpiry = 4 * time.Hour

// StorageProvider resolves object keys to URLs clients can fetch. Lesson
// media is private; the minio provider hands out short-lived presigned
// GETs, the local provider serves from the static /media route in dev.
type StorageProvider interface {
	PresignedGetURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) PresignedGetURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "/media/" + objectKey, nil
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) PresignedGetURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, objectKey, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

type StorageService struct {
	provider StorageProvider
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	switch cfg.Storage.Type {
	case "minio":
		provider, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		return &StorageService{provider: provider}, nil
	case "local", "":
		return &StorageService{provider: &LocalStorageProvider{Config: &cfg.Storage}}, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// LessonVideoURL resolves the lesson's video. Empty when the lesson has no
// video attached.
func (s *StorageService) LessonVideoURL(ctx context.Context, lesson *model.Lesson) (string, error) {
	if lesson.VideoObjectKey == "" {
		return "", nil
	}
	return s.provider.PresignedGetURL(ctx, lesson.VideoObjectKey, lessonURLExpiry)
}
