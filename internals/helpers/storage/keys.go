package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CertificateKey is certificate/YYYY/MM/<id><ext>.
func CertificateKey(id uuid.UUID, ext string, at time.Time) string {
	return fmt.Sprintf("certificate/%04d/%02d/%s%s", at.Year(), int(at.Month()), id.String(), normExt(ext))
}

// TeamFileKey is teams/<team>/<kind>/<unix>_<rand><ext>; kind is "works" or "attachment".
func TeamFileKey(teamID uuid.UUID, kind, filename string) string {
	return fmt.Sprintf("teams/%s/%s/%d_%s%s", teamID, kind, time.Now().Unix(), uuid.NewString()[:8], normExt(filepath.Ext(filename)))
}

// ApplicationKey is applications/<id>/<unix>_<rand><ext>; a replacement never reuses the current key.
func ApplicationKey(appID uuid.UUID, filename string) string {
	return fmt.Sprintf("applications/%s/%d_%s%s", appID, time.Now().Unix(), uuid.NewString()[:8], normExt(filepath.Ext(filename)))
}

func normExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
