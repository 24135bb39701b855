package model

import (
	"fmt"
	"strings"
)

// SegItemSig is one (clip_id, in_ms, out_ms) tuple, the atomic unit both
// playlist and segment signatures are built from.
type SegItemSig struct {
	ClipID string
	InMS   int
	OutMS  int
}

// quantize rounds ms to the nearest multiple of gridMS, using round-half-
// to-even (banker's rounding) on exact ties — matching Python's round(),
// which is what the original implementation's model.py quantizer uses.
// Round-half-up would instead send every exact half-grid input (125 ms,
// 375 ms, ... at the 250 ms default) upward, disagreeing with the original
// at those boundaries and shifting loose-key clustering.
func quantize(ms, gridMS int) int {
	if gridMS <= 0 {
		return ms
	}
	sign := 1
	abs := ms
	if ms < 0 {
		sign = -1
		abs = -ms
	}
	q, r := abs/gridMS, abs%gridMS
	switch {
	case 2*r > gridMS:
		q++
	case 2*r == gridMS && q%2 != 0:
		q++
	}
	return sign * q * gridMS
}

// ItemSignatures returns the per-play-item (clip_id, in_ms, out_ms) tuples
// for a playlist, exact (no quantization).
func (p *Playlist) ItemSignatures() []SegItemSig {
	sigs := make([]SegItemSig, len(p.PlayItems))
	for i, pi := range p.PlayItems {
		sigs[i] = SegItemSig{ClipID: pi.ClipID, InMS: pi.InMS(), OutMS: pi.OutMS()}
	}
	return sigs
}

// ExactSignature is the playlist's tuple of (clip_id, in_ms, out_ms) over its
// play items with no quantization, joined into one comparable string key.
func (p *Playlist) ExactSignature() string {
	return joinSigs(p.ItemSignatures())
}

// LooseSignature is the playlist's signature after quantizing each
// timestamp to gridMS (spec default 250).
func (p *Playlist) LooseSignature(gridMS int) string {
	sigs := p.ItemSignatures()
	loose := make([]SegItemSig, len(sigs))
	for i, s := range sigs {
		loose[i] = SegItemSig{ClipID: s.ClipID, InMS: quantize(s.InMS, gridMS), OutMS: quantize(s.OutMS, gridMS)}
	}
	return joinSigs(loose)
}

func joinSigs(sigs []SegItemSig) string {
	parts := make([]string, len(sigs))
	for i, s := range sigs {
		parts[i] = fmt.Sprintf("%s:%d:%d", s.ClipID, s.InMS, s.OutMS)
	}
	return strings.Join(parts, "|")
}

// SegmentKey returns the loose-quantized segment key for one play item,
// stable across playlists that reference the same underlying source span.
func SegmentKey(clipID string, inMS, outMS, gridMS int) string {
	return fmt.Sprintf("%s:%d:%d", clipID, quantize(inMS, gridMS), quantize(outMS, gridMS))
}

// SceneKey builds the synthetic key for a scene-derived segment reference,
// which has no backing play item of its own.
func SceneKey(playlist string, idx int) string {
	return fmt.Sprintf("SCENE:%s:%d", playlist, idx)
}

// LooseKeys returns the ordered set of per-item loose segment keys for a
// playlist.
func (p *Playlist) LooseKeys(gridMS int) []string {
	keys := make([]string, len(p.PlayItems))
	for i, pi := range p.PlayItems {
		keys[i] = SegmentKey(pi.ClipID, pi.InMS(), pi.OutMS(), gridMS)
	}
	return keys
}

// SegmentKeyTuple quantizes and joins an arbitrary ordered subset of item
// signatures into one comparable string, used to group playlists by their
// BODY-labeled content alone (spec §4.3.6's body-equivalence collapse).
func SegmentKeyTuple(sigs []SegItemSig, gridMS int) string {
	loose := make([]SegItemSig, len(sigs))
	for i, s := range sigs {
		loose[i] = SegItemSig{ClipID: s.ClipID, InMS: quantize(s.InMS, gridMS), OutMS: quantize(s.OutMS, gridMS)}
	}
	return joinSigs(loose)
}
