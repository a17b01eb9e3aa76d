package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1234, "1.21 KB"},
		{245760, "240 KB"},
		{1048575, "1 MB"},
		{1024*1024 - 6, "1023.99 KB"},
		{5 * 1024 * 1024, "5 MB"},
		{3 * 1024 * 1024 * 1024 / 2, "1.5 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3072 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.bytes), "bytes=%d", tt.bytes)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "March 5, 2024", FormatDate(time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)))
	assert.Empty(t, FormatDate(time.Time{}))
}
