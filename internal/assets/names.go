package assets

import (
	"encoding/hex"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	extPattern  = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)
	namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,254}$`)
)

// NewFilename generates a unique stored name for an upload, keeping the
// original extension when it is sane. Names have the form
// <unix-nanos>-<16 hex chars><ext>.
func NewFilename(original string, now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("%d-%s%s", now.UnixNano(), hex.EncodeToString(id[:8]), extension(original))
}

func extension(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// ValidName reports whether name is a bare asset filename safe to resolve
// under the asset root.
func ValidName(name string) bool {
	if !namePattern.MatchString(name) {
		return false
	}
	return !strings.Contains(name, "..")
}

// ContentType guesses a content type from the asset name.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// StoredAt recovers the upload time encoded in a generated name.
func StoredAt(name string) (time.Time, bool) {
	prefix, _, ok := strings.Cut(name, "-")
	if !ok {
		return time.Time{}, false
	}
	nanos, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || nanos <= 0 {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}
