package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"dochub/internal/domain"
)

type memoryBlob struct {
	data        []byte
	contentType string
}

// MemoryStorage хранит объекты в памяти процесса
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryBlob
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryBlob)}
}

func (s *MemoryStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryBlob{
		data:        append([]byte(nil), data...),
		contentType: contentType,
	}
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	blob, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.NotFound("object not found: %s", key)
	}

	return &object{
		ReadCloser:    io.NopCloser(bytes.NewReader(blob.data)),
		contentLength: int64(len(blob.data)),
		contentType:   blob.contentType,
	}, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Len возвращает количество объектов
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
