// Package bdmv implements the five on-disc Blu-ray authoring formats this
// system reads: MPLS playlists, CLPI clip info, index.bdmv, MovieObject.bdmv,
// and the IG menu stream demuxed out of an m2ts. Every parser here builds one
// of the pkg/model types and never mutates global state, matching the
// teacher's pkg/matroska parsers (parse into a tree, hand the caller an
// immutable value).
package bdmv

import "github.com/kanzaki-rei/bdpl-go/pkg/model"

// codingTypeName is the coding_type -> codec display name table shared by
// MPLS STN_table entries and CLPI ProgramInfo entries. Grounded on
// bdpl/bdmv/mpls.py's _CODING_TYPE and bdpl/bdmv/clpi.py's _CODEC_NAME
// (merged; the two original tables differ only in string spelling for a
// couple of entries, which we normalize to one name per code).
var codingTypeName = map[byte]string{
	0x01: "MPEG-1 Video",
	0x02: "MPEG-2 Video",
	0x1B: "H.264/AVC",
	0x24: "HEVC",
	0xEA: "VC-1",
	0x03: "MPEG-1 Audio",
	0x04: "MPEG-2 Audio",
	0x80: "LPCM",
	0x81: "AC-3",
	0x82: "DTS",
	0x83: "TrueHD",
	0x84: "E-AC-3",
	0x85: "DTS-HD HR",
	0x86: "DTS-HD MA",
	0xA1: "DD+ Secondary",
	0xA2: "DTS-HD Secondary",
	0x90: "PGS",
	0x91: "IG",
	0x92: "Text Subtitle",
}

var videoCodingTypes = map[byte]bool{0x01: true, 0x02: true, 0x1B: true, 0x24: true, 0xEA: true}
var audioCodingTypes = map[byte]bool{0x03: true, 0x04: true, 0x80: true, 0x81: true, 0x82: true, 0x83: true, 0x84: true, 0x85: true, 0x86: true, 0xA1: true, 0xA2: true}
var pgCodingTypes = map[byte]bool{0x90: true}
var igCodingTypes = map[byte]bool{0x91: true}
var textCodingTypes = map[byte]bool{0x92: true}

func codecName(codingType byte) string {
	if name, ok := codingTypeName[codingType]; ok {
		return name
	}
	return hexByte(codingType)
}

func hexByte(b byte) string {
	const hexDigits = "0123456789ABCDEF"
	return "0x" + string(hexDigits[b>>4]) + string(hexDigits[b&0x0F])
}

func streamClassFor(codingType byte) model.StreamClass {
	switch {
	case videoCodingTypes[codingType]:
		return model.StreamVideo
	case audioCodingTypes[codingType]:
		return model.StreamAudio
	default:
		return model.StreamGraphic
	}
}

// parseStreamAttrs reads the coding-type-dependent tail of a stream_attributes
// block (already positioned just past coding_type) and returns (lang, extra).
// Grounded on the union of mpls.py's _parse_stream_attrs and clpi.py's
// _parse_stream_attrs; CLPI's text-subtitle char_code field is folded in
// since MPLS attribute blocks never carry type 0x92 in practice but CLPI's
// do.
func parseStreamAttrs(r reader, codingType byte) (lang string, extra map[string]string, err error) {
	extra = map[string]string{}
	switch {
	case videoCodingTypes[codingType]:
		packed, e := r.ReadU8()
		if e != nil {
			return "", extra, e
		}
		extra["video_format"] = hexByte(packed >> 4)
		extra["frame_rate"] = hexByte(packed & 0x0F)
	case audioCodingTypes[codingType]:
		packed, e := r.ReadU8()
		if e != nil {
			return "", extra, e
		}
		extra["audio_format"] = hexByte(packed >> 4)
		extra["sample_rate"] = hexByte(packed & 0x0F)
		lang, err = r.ReadASCII(3)
	case pgCodingTypes[codingType], igCodingTypes[codingType]:
		lang, err = r.ReadASCII(3)
	case textCodingTypes[codingType]:
		charCode, e := r.ReadU8()
		if e != nil {
			return "", extra, e
		}
		extra["char_code"] = hexByte(charCode)
		lang, err = r.ReadASCII(3)
	}
	return lang, extra, err
}

// reader is the subset of *bdreader.Reader the codec helpers above need,
// narrowed so this file doesn't import bdreader directly for the two
// functions that only touch attribute bytes.
type reader interface {
	ReadU8() (uint8, error)
	ReadASCII(n int) (string, error)
}
