// Package preview строит JPEG превью изображений и кеширует их в хранилище.
package preview

import (
	"context"
	"fmt"
	"io"

	"github.com/h2non/bimg"

	"dochub/internal/domain"
	"dochub/internal/logging"
	"dochub/internal/storage"
)

const (
	maxImageSize = 1024 // максимальная ширина превью в пикселях
	jpegQuality  = 85
	contentType  = "image/jpeg"
)

// imageTypes - типы файлов, для которых строится превью
var imageTypes = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
	"gif":  true,
}

// DocumentSource находит документ, доступный пользователю
type DocumentSource interface {
	Viewable(ctx context.Context, userID int64, slug string) (*domain.Document, error)
}

// ResizeFunc уменьшает изображение до превью
type ResizeFunc func(data []byte) ([]byte, error)

type Service struct {
	documents DocumentSource
	storage   storage.Storage
	resize    ResizeFunc
	logger    logging.Logger
}

// NewService создает сервис превью. resize == nil означает обработку через libvips.
func NewService(documents DocumentSource, store storage.Storage, resize ResizeFunc) *Service {
	if resize == nil {
		resize = optimizeImage
	}
	return &Service{
		documents: documents,
		storage:   store,
		resize:    resize,
		logger:    logging.New("preview"),
	}
}

// Supported проверяет, умеем ли мы строить превью для типа файла
func Supported(fileType string) bool {
	return imageTypes[fileType]
}

// GetOrGeneratePreview возвращает превью текущей версии документа
func (s *Service) GetOrGeneratePreview(ctx context.Context, userID int64, slug string) ([]byte, error) {
	doc, err := s.documents.Viewable(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if !Supported(doc.FileType) {
		return nil, domain.Validation("Preview is not available for %q files.", doc.FileType)
	}

	previewKey := storage.PreviewKey(doc.ID, doc.CurrentVersion)

	if cached, err := s.read(ctx, previewKey); err == nil {
		s.logger.Debugf("[Preview] Found cached preview: %s", previewKey)
		return cached, nil
	}

	s.logger.Debugf("[Preview] Generating preview for document %d version %d", doc.ID, doc.CurrentVersion)

	original, err := s.read(ctx, doc.FileKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}

	previewData, err := s.resize(original)
	if err != nil {
		s.logger.Errorf("[Preview] Failed to generate preview for document %d: %v", doc.ID, err)
		return nil, fmt.Errorf("failed to generate preview: %w", err)
	}

	if err := s.storage.Put(ctx, previewKey, previewData, contentType); err != nil {
		s.logger.Warnf("[Preview] Failed to cache preview %s: %v", previewKey, err)
	}

	return previewData, nil
}

func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.storage.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

// optimizeImage уменьшает изображение до maxImageSize по ширине
func optimizeImage(data []byte) ([]byte, error) {
	image := bimg.NewImage(data)

	size, err := image.Size()
	if err != nil {
		return nil, fmt.Errorf("failed to get image size: %w", err)
	}

	width, height := calculateNewDimensions(size.Width, size.Height, maxImageSize)

	processed, err := image.Process(bimg.Options{
		Width:   width,
		Height:  height,
		Quality: jpegQuality,
		Type:    bimg.JPEG,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}
	return processed, nil
}

// calculateNewDimensions сохраняет пропорции, маленькие изображения не увеличиваются
func calculateNewDimensions(width, height, maxWidth int) (newWidth, newHeight int) {
	if width <= maxWidth || width == 0 {
		return width, height
	}
	return maxWidth, (height * maxWidth) / width
}
