package queue

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// archiveContains reports whether key appears in the yt-dlp download archive.
// The match is a raw substring test over the whole file, the same check the
// archive has always had; a key that is a prefix of a longer id on the same
// line also matches. A missing archive contains nothing.
func archiveContains(path, key string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read download archive: %w", err)
	}
	return strings.Contains(string(data), key), nil
}
