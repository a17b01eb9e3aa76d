package client

import (
	"math"
	"strconv"
	"time"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize печатает размер с точностью до двух знаков без хвостовых нулей.
// Единица выбирается после округления: 1048575 байт печатаются как "1 MB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	size := float64(bytes)
	unit := 0
	for {
		size = math.Round(size*100) / 100
		if size < 1024 || unit == len(sizeUnits)-1 {
			break
		}
		size /= 1024
		unit++
	}
	return strconv.FormatFloat(size, 'f', -1, 64) + " " + sizeUnits[unit]
}

// FormatDate печатает дату в виде "January 2, 2006"
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}
