// Package storage хранит содержимое файлов документов.
package storage

import (
	"context"
	"fmt"
	"io"
)

// Object - объект, прочитанный из хранилища
type Object interface {
	io.ReadCloser
	ContentLength() int64
	ContentType() string
}

type object struct {
	io.ReadCloser
	contentLength int64
	contentType   string
}

func (o *object) ContentLength() int64 {
	return o.contentLength
}

func (o *object) ContentType() string {
	return o.contentType
}

// Storage определяет интерфейс blob-хранилища
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (Object, error)
	// Delete не возвращает ошибку для отсутствующего ключа
	Delete(ctx context.Context, key string) error
}

// DocumentKey возвращает ключ нового файла документа
func DocumentKey(ownerID int64, id, ext string) string {
	return fmt.Sprintf("documents/%d/%s%s", ownerID, id, ext)
}

// PreviewKey - ключ закешированного превью версии документа
func PreviewKey(documentID int64, version int) string {
	return fmt.Sprintf("previews/%d_v%d", documentID, version)
}
