package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/bdlog"
)

func u16be(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }
func u32be(v uint32) []byte { return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)} }

// buildPlayItem/buildMPLS mirror pkg/bdmv/mpls_test.go's wire layout, kept
// independent since that file's helpers are unexported to their package.
func buildPlayItem(clipID string, inTime, outTime uint32) []byte {
	var content []byte
	content = append(content, []byte(clipID)...)
	content = append(content, []byte("M2TS")...)
	content = append(content, u16be(0)...)
	content = append(content, 0)
	content = append(content, u32be(inTime)...)
	content = append(content, u32be(outTime)...)
	content = append(content, make([]byte, 8)...)
	content = append(content, 0)
	content = append(content, 0)
	content = append(content, u16be(0)...)
	content = append(content, u16be(0)...)

	var item []byte
	item = append(item, u16be(uint16(len(content)))...)
	item = append(item, content...)
	return item
}

func buildMPLS(items [][]byte) []byte {
	const headerLen = 4 + 4 + 4 + 4 + 4

	var playlistSection []byte
	playlistSection = append(playlistSection, u32be(0)...)
	playlistSection = append(playlistSection, u16be(0)...)
	playlistSection = append(playlistSection, u16be(uint16(len(items)))...)
	playlistSection = append(playlistSection, u16be(0)...)
	for _, it := range items {
		playlistSection = append(playlistSection, it...)
	}

	var markSection []byte
	markSection = append(markSection, u32be(0)...)
	markSection = append(markSection, u16be(0)...)

	playlistStart := uint32(headerLen)
	markStart := playlistStart + uint32(len(playlistSection))
	extStart := markStart + uint32(len(markSection))

	var buf []byte
	buf = append(buf, []byte("MPLS")...)
	buf = append(buf, []byte("0200")...)
	buf = append(buf, u32be(playlistStart)...)
	buf = append(buf, u32be(markStart)...)
	buf = append(buf, u32be(extStart)...)
	buf = append(buf, playlistSection...)
	buf = append(buf, markSection...)
	return buf
}

func writeBDMV(t *testing.T, root string) {
	t.Helper()
	playlistDir := filepath.Join(root, "PLAYLIST")
	if err := os.MkdirAll(playlistDir, 0o755); err != nil {
		t.Fatal(err)
	}
	item := buildPlayItem("00001", 0, 45*2000)
	buf := buildMPLS([][]byte{item})
	if err := os.WriteFile(filepath.Join(playlistDir, "00001.mpls"), buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRequiresPlaylistDir(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	_, err := Load(dir, bdlog.Discard{})
	is.True(err != nil)
}

func TestLoadParsesPlaylistsAndDegradesOptionalInputs(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	writeBDMV(t, dir)

	disc, err := Load(dir, bdlog.Discard{})
	is.NoErr(err)
	is.Equal(disc.BDMVPath, dir)
	is.Equal(len(disc.Playlists), 1)
	is.Equal(disc.Playlists["00001.mpls"].DurationMS(), 2000)
	is.Equal(len(disc.Clips), 0)
	is.True(disc.Hints != nil)
	is.True(disc.Hints.Index == nil)
	is.True(disc.Hints.TitlePlaylists == nil)
	is.Equal(len(disc.Hints.IGHints), 0)
}

func TestLoadIgnoresNonMPLSFiles(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	writeBDMV(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "PLAYLIST", "README.txt"), []byte("not a playlist"), 0o644); err != nil {
		t.Fatal(err)
	}

	disc, err := Load(dir, bdlog.Discard{})
	is.NoErr(err)
	is.Equal(len(disc.Playlists), 1)
}
