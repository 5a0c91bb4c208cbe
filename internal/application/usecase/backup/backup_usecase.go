package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const backupFolder = "backups/portfolio"

type BackupUseCase struct {
	portfolioRepo portfolio.Repository
	uploader      service.Uploader
	logger        logger.Logger
	now           func() time.Time
}

func NewBackupUseCase(repo portfolio.Repository, uploader service.Uploader, log logger.Logger) *BackupUseCase {
	return &BackupUseCase{
		portfolioRepo: repo,
		uploader:      uploader,
		logger:        log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type BackupOutput struct {
	URL      string
	PublicID string
}

// Execute snapshots the stored portfolio as YAML and uploads it. The default
// record is never backed up.
func (uc *BackupUseCase) Execute(ctx context.Context) (*BackupOutput, error) {
	uc.logger.Info("Starting portfolio backup...")

	p, err := uc.portfolioRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load portfolio for backup failed: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, apperror.NewInternal("failed to encode portfolio backup", err)
	}
	if err := enc.Close(); err != nil {
		return nil, apperror.NewInternal("failed to encode portfolio backup", err)
	}

	filename := fmt.Sprintf("portfolio-v%d-%s.yaml", p.Version, uc.now().Format("2006-01-02_15-04-05"))

	uploadURL, err := uc.uploader.Upload(ctx, bytes.NewReader(buf.Bytes()), backupFolder, filename)
	if err != nil {
		uc.logger.Error("Failed to upload portfolio backup to Cloudinary", err)
		return nil, apperror.NewInternal("failed to upload portfolio backup", err)
	}

	publicID := fmt.Sprintf("%s/%s", backupFolder, filename)
	uc.logger.Info("Portfolio backup completed and uploaded successfully",
		zap.String("url", uploadURL),
		zap.String("public_id", publicID),
		zap.Int("version", p.Version),
	)
	return &BackupOutput{URL: uploadURL, PublicID: publicID}, nil
}
