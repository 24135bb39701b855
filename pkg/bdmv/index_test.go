package bdmv

import (
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/bdlog"
	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// indexEntryHDMV builds a 12-byte index entry for an HDMV object.
func indexEntryHDMV(accessType uint8, movieObjectID uint16) []byte {
	flags := byte(model.IndexObjectHDMV<<6) | (accessType << 2)
	b := make([]byte, 12)
	b[0] = flags
	// b[1:4] reserved
	// b[4:6] hdmv_playback_type, left zero
	b[6] = byte(movieObjectID >> 8)
	b[7] = byte(movieObjectID)
	return b
}

func buildIndexBdmv(titles [][]byte) []byte {
	var buf []byte
	buf = append(buf, []byte("INDX")...)
	buf = append(buf, []byte("0200")...)

	indexesStart := uint32(8 + 4 + 4) // after magic+version+2 u32 offsets
	buf = append(buf, u32be(indexesStart)...)
	buf = append(buf, u32be(0)...) // ext data start, unused

	var section []byte
	section = append(section, indexEntryHDMV(0, 1)...) // first playback -> object 1
	section = append(section, indexEntryHDMV(0, 2)...) // top menu -> object 2
	section = append(section, u16be(uint16(len(titles)))...)
	for _, t := range titles {
		section = append(section, t...)
	}

	lengthPrefixed := append(u32be(uint32(len(section))), section...)
	buf = append(buf, lengthPrefixed...)
	return buf
}

func u32be(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func u16be(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func TestParseIndexBasic(t *testing.T) {
	is := is.New(t)

	titles := [][]byte{
		indexEntryHDMV(0, 10),
		indexEntryHDMV(0, 11),
	}
	buf := buildIndexBdmv(titles)

	idx, err := ParseIndex(buf, bdlog.Discard{})
	is.NoErr(err)
	is.Equal(idx.FirstPlayback.MovieObjectID, 1)
	is.Equal(idx.TopMenu.MovieObjectID, 2)
	is.Equal(len(idx.Titles), 2)
	is.Equal(idx.Titles[0].TitleNumber, 0)
	is.Equal(idx.Titles[0].MovieObjectID, 10)
	is.Equal(idx.Titles[1].MovieObjectID, 11)
}

func TestParseIndexRejectsBadMagic(t *testing.T) {
	is := is.New(t)
	buf := append([]byte("XXXX"), make([]byte, 20)...)
	_, err := ParseIndex(buf, bdlog.Discard{})
	is.True(err != nil)
}
