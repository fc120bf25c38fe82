package queue

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

// Dirs are the filesystem roots a queue works with.
type Dirs struct {
	// Download is the default destination root.
	Download string
	// Private replaces Download when the private-directory preference is set.
	Private string
	// Work is where yt-dlp runs and writes before files are moved. Empty
	// uses Download.
	Work string
}

// destinationDir is <root>/<path hint>[/<extractor>].
func destinationDir(d Dirs, p preferences.Preferences, hint string, info videoinfo.VideoInfo) string {
	root := d.Download
	switch {
	case p.SDCardDownload && p.SDCardPath != "":
		root = p.SDCardPath
	case p.PrivateDirectory && d.Private != "":
		root = d.Private
	}

	dir := filepath.Join(root, hint)
	if p.SubdirectoryExtractor && info.ExtractorKey != "" {
		dir = filepath.Join(dir, info.ExtractorKey)
	}
	return dir
}

// moveInto moves src into dir and returns the new path. A src inside work
// keeps its path relative to work, so template subdirectories such as the
// playlist title survive; anything else keeps only its base name. Renames
// that fail, typically across filesystems, fall back to copy and remove.
func moveInto(src, work, dir string) (string, error) {
	rel := filepath.Base(src)
	if work != "" {
		if r, err := filepath.Rel(work, src); err == nil && filepath.IsLocal(r) {
			rel = r
		}
	}
	dst := filepath.Join(dir, rel)
	if filepath.Clean(src) == filepath.Clean(dst) {
		return src, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil {
		slog.Warn("queue: failed to remove source after copy", "path", src, "error", err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy file: %w", err)
	}
	return out.Close()
}
