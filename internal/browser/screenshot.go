package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"courtbook-service/pkg/logger"
)

// Recorder captures page screenshots to disk and remembers what it wrote,
// so a session can attach its shots to the report email afterwards.
// Capture is best-effort: a failed screenshot is logged and skipped, it
// never fails a booking.
type Recorder struct {
	dir string
	loc *time.Location
	log logger.Logger

	mu    sync.Mutex
	files []string
}

// NewRecorder writes PNGs under dir, timestamping filenames in loc.
func NewRecorder(dir string, loc *time.Location, log logger.Logger) *Recorder {
	if loc == nil {
		loc = time.Local
	}
	return &Recorder{dir: dir, loc: loc, log: log}
}

// Capture takes a full-page screenshot labelled with reason and returns the
// written path, or "" when the capture failed.
func (r *Recorder) Capture(ctx context.Context, page Page, reason string) string {
	buf, err := page.Screenshot(ctx)
	if err != nil {
		r.log.Warn("Screenshot failed", "reason", reason, "error", err)
		return ""
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		r.log.Warn("Screenshot dir unavailable", "dir", r.dir, "error", err)
		return ""
	}
	name := fmt.Sprintf("%s_%s.png",
		time.Now().In(r.loc).Format("06.01.02_15-04-05"),
		sanitizeLabel(reason))
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		r.log.Warn("Screenshot write failed", "path", path, "error", err)
		return ""
	}
	r.mu.Lock()
	r.files = append(r.files, path)
	r.mu.Unlock()
	return path
}

// Files lists the paths written so far, in capture order.
func (r *Recorder) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.files))
	copy(out, r.files)
	return out
}

func sanitizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == ' ', c == '-', c == '_', c == '/':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "page"
	}
	return b.String()
}
