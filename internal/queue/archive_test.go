package queue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

func TestArchiveContains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.txt")
	require.NoError(t, os.WriteFile(path, []byte("youtube abc123\nvimeo 42\n"), 0o644))

	found, err := archiveContains(path, "youtube abc123")
	require.NoError(t, err)
	require.True(t, found)

	found, err = archiveContains(path, "youtube zzz")
	require.NoError(t, err)
	require.False(t, found)

	// Raw substring semantics: a prefix of a longer id matches too.
	found, err = archiveContains(path, "youtube abc")
	require.NoError(t, err)
	require.True(t, found)

	found, err = archiveContains(filepath.Join(t.TempDir(), "missing"), "youtube abc123")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDestinationDir(t *testing.T) {
	d := Dirs{Download: "/dl", Private: "/private"}
	info := videoinfo.VideoInfo{ExtractorKey: "Youtube"}

	require.Equal(t, "/dl/video", destinationDir(d, preferences.Preferences{}, "video", info))
	require.Equal(t, "/private/audio", destinationDir(d, preferences.Preferences{PrivateDirectory: true}, "audio", info))
	require.Equal(t, "/sd/video", destinationDir(d, preferences.Preferences{SDCardDownload: true, SDCardPath: "/sd"}, "video", info))
	require.Equal(t, "/dl/video/Youtube", destinationDir(d, preferences.Preferences{SubdirectoryExtractor: true}, "video", info))
	require.Equal(t, "/dl/video", destinationDir(Dirs{Download: "/dl"}, preferences.Preferences{PrivateDirectory: true}, "video", info))
}

func TestMoveInto(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mkv")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	dst, err := moveInto(src, "", filepath.Join(dir, "video", "Youtube"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "video", "Youtube", "a.mkv"), dst)
	require.NoFileExists(t, src)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "data", string(got))

	// Already in place.
	same, err := moveInto(dst, "", filepath.Dir(dst))
	require.NoError(t, err)
	require.Equal(t, dst, same)

	_, err = moveInto(filepath.Join(dir, "missing.mkv"), "", filepath.Join(dir, "out"))
	require.Error(t, err)
}

func TestMoveInto_KeepsPathRelativeToWorkDir(t *testing.T) {
	root := t.TempDir()
	work := filepath.Join(root, "work")
	src := filepath.Join(work, "My List", "a.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	dst, err := moveInto(src, work, filepath.Join(root, "dl", "video"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dl", "video", "My List", "a.mkv"), dst)
	require.FileExists(t, dst)

	// Outside the work dir only the base name is kept.
	outside := filepath.Join(root, "elsewhere", "b.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(outside), 0o755))
	require.NoError(t, os.WriteFile(outside, []byte("data"), 0o644))
	dst, err = moveInto(outside, work, filepath.Join(root, "dl", "video"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dl", "video", "b.mkv"), dst)
}
