package model

import (
	"math"
	"strconv"
)

var sizeNames = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders byte count for humans: 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	v, i := float64(bytes), 0
	for v >= 1024 && i < len(sizeNames)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeNames[i]
}
