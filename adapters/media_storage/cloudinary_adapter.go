package media_storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

// Backups are YAML documents, so they are stored as raw assets rather than
// images.
const resourceTypeRaw = "raw"

type cloudinaryAdapter struct {
	cld    *cloudinary.Cloudinary
	logger logger.Logger
}

func NewCloudinaryAdapter(cfg config.Config, log logger.Logger) (service.Uploader, error) {
	if cfg.Cloudinary.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name has not config")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}

	log.Info("Connect Cloudinary successfully.", zap.String("cloud_name", cfg.Cloudinary.CloudName))
	return &cloudinaryAdapter{cld: cld, logger: log}, nil
}

func (a *cloudinaryAdapter) Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error) {
	uploadParams := uploader.UploadParams{
		PublicID:     publicID,
		Folder:       folder,
		ResourceType: resourceTypeRaw,
		Overwrite:    api.Bool(true),
	}
	result, err := a.cld.Upload.Upload(ctx, file, uploadParams)
	if err != nil {
		return "", fmt.Errorf("failed to upload cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}
	a.logger.Debug("Uploaded asset", zap.String("public_id", result.PublicID), zap.Int("bytes", result.Bytes))
	return result.SecureURL, nil
}

func (a *cloudinaryAdapter) Delete(ctx context.Context, publicID string) error {
	_, err := a.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceTypeRaw,
	})
	if err != nil {
		return fmt.Errorf("failed to delete cloudinary: %w", err)
	}
	return nil
}
