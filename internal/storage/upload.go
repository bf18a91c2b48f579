package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader archives a plate photo and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// PhotoKey builds the object key for a user's plate photo:
// plates/<user>/<yyyy-mm-dd>/<uuid>.<ext>
func PhotoKey(userID, contentType string, now time.Time) string {
	user := strings.TrimSpace(userID)
	if user == "" {
		user = "anonymous"
	}
	return fmt.Sprintf("plates/%s/%s/%s%s", user, now.UTC().Format("2006-01-02"), uuid.NewString(), extension(contentType))
}

func extension(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
