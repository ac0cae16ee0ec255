package services

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPresignExpiry = 15 * time.Minute
	maxPresignExpiry     = time.Hour
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MediaService manages inventory images and hands out upload URLs.
type MediaService interface {
	CRUDService[models.Media, models.MediaRequest]
	ListByInventory(ctx context.Context, inventoryID uint) ([]models.Media, *ServiceError)
	Presign(ctx context.Context, req *models.PresignRequest) (*models.PresignResponse, *ServiceError)
}

type mediaServiceImpl struct {
	*crudService[models.Media, models.MediaRequest]
	media     repository.MediaRepository
	inventory repository.InventoryRepository
	presigner aws_pkg.Presigner
	keyPrefix string
}

// NewMediaService builds the media service. A nil presigner disables uploads.
func NewMediaService(
	media repository.MediaRepository,
	inventory repository.InventoryRepository,
	presigner aws_pkg.Presigner,
	keyPrefix string,
	logger *zap.Logger,
) MediaService {
	s := &mediaServiceImpl{
		media:     media,
		inventory: inventory,
		presigner: presigner,
		keyPrefix: keyPrefix,
	}
	s.crudService = &crudService[models.Media, models.MediaRequest]{
		repo:    media,
		subject: "Media",
		logger:  logger,
		apply: func(req *models.MediaRequest, m *models.Media) {
			m.ProductInventoryID = req.ProductInventoryID
			m.Image = req.Image
			if m.Image == "" {
				m.Image = models.DefaultImagePath
			}
			m.AltText = req.AltText
			m.IsFeature = req.IsFeature
			m.ProductInventory = nil
		},
		check: func(ctx context.Context, req *models.MediaRequest) *ServiceError {
			return s.checkInventory(ctx, req.ProductInventoryID)
		},
	}
	return s
}

func (s *mediaServiceImpl) ListByInventory(ctx context.Context, inventoryID uint) ([]models.Media, *ServiceError) {
	media, err := s.media.FindByInventory(ctx, inventoryID)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Media", "Failed to list media")
	}
	return media, nil
}

// Presign returns a PUT URL for a new image under
// <prefix>inventory/<id>/<uuid>-<filename>.
func (s *mediaServiceImpl) Presign(ctx context.Context, req *models.PresignRequest) (*models.PresignResponse, *ServiceError) {
	if s.presigner == nil {
		return nil, &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Media uploads are not configured"}
	}
	if err := validation.Struct(req); err != nil {
		return nil, badRequest(err.Error())
	}
	contentType := strings.ToLower(req.ContentType)
	if !allowedImageTypes[contentType] {
		return nil, badRequest("Unsupported content type")
	}
	if svcErr := s.checkInventory(ctx, req.ProductInventoryID); svcErr != nil {
		return nil, svcErr
	}

	// Clamp in seconds before converting so large values cannot overflow.
	expires := defaultPresignExpiry
	if req.ExpiresIn > 0 {
		seconds := min(req.ExpiresIn, int64(maxPresignExpiry/time.Second))
		expires = time.Duration(seconds) * time.Second
	}

	key := s.keyPrefix + path.Join("inventory", strconv.FormatUint(uint64(req.ProductInventoryID), 10), uuid.NewString()+"-"+cleanFilename(req.Filename))
	url, headers, err := s.presigner.PresignPut(ctx, key, contentType, expires)
	if err != nil {
		s.logger.Error("Failed to presign upload", zap.Error(err), zap.String("key", key))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to presign upload"}
	}

	return &models.PresignResponse{
		UploadURL: url,
		Key:       key,
		Headers:   headers,
		ExpiresIn: int64(expires / time.Second),
	}, nil
}

func (s *mediaServiceImpl) checkInventory(ctx context.Context, id uint) *ServiceError {
	if _, err := s.inventory.FindByID(ctx, id); err != nil {
		return badRequest("Inventory item not found")
	}
	return nil
}

// cleanFilename keeps the base name and replaces anything outside the slug
// alphabet and dots.
func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "upload"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '.', r == '-', r == '_',
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
