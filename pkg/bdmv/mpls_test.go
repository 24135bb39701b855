package bdmv

import (
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/bdlog"
)

func buildPlayItem(clipID string, inTime, outTime uint32) []byte {
	var content []byte
	content = append(content, []byte(clipID)...) // 5 bytes
	content = append(content, []byte("M2TS")...) // 4 bytes codec id
	content = append(content, u16be(0)...)        // flags: not multi-angle, connection_condition=0
	content = append(content, 0)                  // ref_to_STC_id
	content = append(content, u32be(inTime)...)
	content = append(content, u32be(outTime)...)
	content = append(content, make([]byte, 8)...) // UO_mask_table
	content = append(content, 0)                  // random_access_flag + reserved
	content = append(content, 0)                  // still_mode = 0 (not still)
	content = append(content, u16be(0)...)         // reserved (since still_mode != 1)
	content = append(content, u16be(0)...)         // STN_table length = 0

	var item []byte
	item = append(item, u16be(uint16(len(content)))...)
	item = append(item, content...)
	return item
}

func buildChapterMark(markType byte, refItem uint16, timestamp uint32, duration uint32) []byte {
	var m []byte
	m = append(m, 0)        // reserved
	m = append(m, markType) // mark_type
	m = append(m, u16be(refItem)...)
	m = append(m, u32be(timestamp)...)
	m = append(m, u16be(0)...) // entry_ES_PID
	m = append(m, u32be(duration)...)
	return m
}

func buildMPLS(items [][]byte, marks [][]byte) []byte {
	const headerLen = 4 + 4 + 4 + 4 + 4 // magic+version+3 offsets

	var playlistSection []byte
	playlistSection = append(playlistSection, u32be(0)...) // length, unused
	playlistSection = append(playlistSection, u16be(0)...) // reserved
	playlistSection = append(playlistSection, u16be(uint16(len(items)))...)
	playlistSection = append(playlistSection, u16be(0)...) // number_of_SubPaths
	for _, it := range items {
		playlistSection = append(playlistSection, it...)
	}

	var markSection []byte
	markSection = append(markSection, u32be(0)...) // length, unused
	markSection = append(markSection, u16be(uint16(len(marks)))...)
	for _, m := range marks {
		markSection = append(markSection, m...)
	}

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

func TestParseMPLSBasic(t *testing.T) {
	is := is.New(t)

	item := buildPlayItem("00001", 0, 45*2000) // 2000ms
	mark := buildChapterMark(1, 0, 0, 45*2000)

	buf := buildMPLS([][]byte{item}, [][]byte{mark})

	pl, err := ParseMPLS(buf, "00001.mpls", bdlog.Discard{})
	is.NoErr(err)
	is.Equal(pl.Filename, "00001.mpls")
	is.Equal(len(pl.PlayItems), 1)
	is.Equal(pl.PlayItems[0].ClipID, "00001")
	is.Equal(pl.PlayItems[0].OutMS(), 2000)
	is.Equal(len(pl.Marks), 1)
	is.Equal(pl.Marks[0].DurationMS, 2000)
	is.Equal(pl.DurationMS(), 2000)
}

func TestParseMPLSRejectsBadMagic(t *testing.T) {
	is := is.New(t)
	buf := append([]byte("XXXX0200"), make([]byte, 30)...)
	_, err := ParseMPLS(buf, "bad.mpls", bdlog.Discard{})
	is.True(err != nil)
}
