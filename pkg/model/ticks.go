// Package model is the normalized in-memory representation parsers build and
// the analysis pipeline mutates: clips, playlists, play items, chapter
// marks, navigation objects, IG hints, and the inferred episodes/specials/
// warnings that make up a DiscAnalysis.
//
// Grounded on the teacher's pkg/matroska/matroska.go Demuxer accessor idiom
// (deep-copy getters over an internally-owned parse tree) for the shape of
// "parsers build it, the rest of the system reads it"; the field set itself
// follows bdpl/model.py (original_source) and spec §3.
package model

// TicksToMS converts a 45 kHz tick count to milliseconds. This is the
// standard conversion for MPLS play-item in/out times.
func TicksToMS(ticks uint32) int {
	return int(ticks) / 45
}

// ChapterDurationToMS converts an MPLS chapter mark's duration field to
// milliseconds. The field is nominally a 90 kHz count, but source behavior
// divides by 45 (treating it as if it were 45 kHz) — see the open question
// in spec §9. Preserved here verbatim for bit-identical output; this is a
// known asymmetry, not a typo.
func ChapterDurationToMS(ticks uint32) int {
	return int(ticks) / 45
}
