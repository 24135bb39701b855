package analysis

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

const (
	menuVisibleMinDurationMS = 15 * 1000
	menuVisibleMaxPlaylistNo = 1000
)

// ExtractSpecialFeatures implements spec §4.3.9 (IG JumpTitle-driven
// extraction, falling back to classification-only enumeration) and §4.3.10
// (menu-visibility inference). playlists indexes every parsed playlist by
// filename (not just the deduped working set — specials are not deduplicated).
//
// Grounded on bdpl/export/digital_archive.py's playlist collection idiom and
// bdpl/bdmv/ig_stream.py's button-order traversal (original_source); the IG
// JumpTitle correlation itself has no original_source analogue and is built
// fresh against pkg/bdmv/igstream.go's IGButtonHint shape.
func ExtractSpecialFeatures(disc *model.DiscAnalysis, playlists map[string]*model.Playlist) []*model.SpecialFeature {
	var features []*model.SpecialFeature
	if disc.Hints != nil && len(disc.Hints.IGHints) > 0 && len(disc.Hints.TitlePlaylists) > 0 {
		features = extractFromIGHints(disc, playlists)
	} else {
		features = extractFallback(disc, playlists)
	}
	applyMenuVisibility(disc, features, playlists)
	return features
}

type igSpecialCandidate struct {
	hint       *model.IGButtonHint
	playlist   string
	jumpTitle  int
	reg2       *int
	sortKey    [2]int // page_id, button_id of the first-seen representative
}

// extractFromIGHints implements spec §4.3.9's IG-driven path.
func extractFromIGHints(disc *model.DiscAnalysis, playlists map[string]*model.Playlist) []*model.SpecialFeature {
	var candidates []igSpecialCandidate
	for _, hint := range disc.Hints.IGHints {
		if hint.JumpTitle == nil {
			continue
		}
		target, ok := disc.Hints.TitlePlaylists[*hint.JumpTitle]
		if !ok {
			continue
		}
		cat := disc.Classifications[target]
		if cat == model.CategoryEpisode || cat == model.CategoryPlayAll {
			continue
		}
		var reg2 *int
		if v, ok := hint.Registers[2]; ok {
			r := int(v)
			reg2 = &r
		}
		candidates = append(candidates, igSpecialCandidate{
			hint:      hint,
			playlist:  target,
			jumpTitle: *hint.JumpTitle,
			reg2:      reg2,
			sortKey:   [2]int{hint.PageID, hint.ButtonID},
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].sortKey[0] != candidates[j].sortKey[0] {
			return candidates[i].sortKey[0] < candidates[j].sortKey[0]
		}
		return candidates[i].sortKey[1] < candidates[j].sortKey[1]
	})

	// Per jump-title target, the sorted distinct set of register-2 chapter
	// indices actually used — needed to find "the next chapter used by
	// another button for the same jump_title target".
	siblingRegs := map[int][]int{}
	for _, c := range candidates {
		if c.reg2 == nil {
			continue
		}
		siblingRegs[c.jumpTitle] = append(siblingRegs[c.jumpTitle], *c.reg2)
	}
	for jt, regs := range siblingRegs {
		sort.Ints(regs)
		siblingRegs[jt] = dedupInts(regs)
	}

	seen := map[string]bool{}
	var features []*model.SpecialFeature
	idx := 0
	for _, c := range candidates {
		key := c.playlist + "|" + regKeyString(c.reg2)
		if seen[key] {
			continue
		}
		seen[key] = true

		pl := playlists[c.playlist]
		if pl == nil {
			continue
		}
		idx++
		dur, chapterStart := igFeatureDuration(pl, c.reg2, siblingRegs[c.jumpTitle])
		features = append(features, &model.SpecialFeature{
			Index:        idx,
			Playlist:     c.playlist,
			DurationMS:   dur,
			Category:     disc.Classifications[c.playlist],
			ChapterStart: chapterStart,
		})
	}
	return features
}

// igFeatureDuration computes one feature's duration per spec §4.3.9: the
// full playlist duration when register_2 is absent, else the span from
// that chapter to the next chapter used by a sibling button targeting the
// same title (or the playlist end).
func igFeatureDuration(pl *model.Playlist, reg2 *int, siblingRegs []int) (int, *int) {
	if reg2 == nil {
		return pl.DurationMS(), nil
	}
	bounds := chapterBoundariesMS(pl)
	if *reg2 < 0 || *reg2 >= len(bounds) {
		return pl.DurationMS(), nil
	}
	start := bounds[*reg2]
	end := pl.DurationMS()
	for _, r := range siblingRegs {
		if r > *reg2 && r < len(bounds) && bounds[r] < end {
			end = bounds[r]
			break
		}
	}
	chapterStart := *reg2
	return end - start, &chapterStart
}

// extractFallback implements spec §4.3.9's no-IG-evidence path:
// classification-only enumeration over every non-episode, non-Play-All
// category, preserving title-hint ordering when one exists.
func extractFallback(disc *model.DiscAnalysis, playlists map[string]*model.Playlist) []*model.SpecialFeature {
	var names []string
	seen := map[string]bool{}

	if disc.Hints != nil && len(disc.Hints.TitlePlaylists) > 0 {
		var titles []int
		for t := range disc.Hints.TitlePlaylists {
			titles = append(titles, t)
		}
		sort.Ints(titles)
		for _, t := range titles {
			name := disc.Hints.TitlePlaylists[t]
			if isSpecialCategory(disc.Classifications[name]) && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	var rest []string
	for name, cat := range disc.Classifications {
		if isSpecialCategory(cat) && !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	features := make([]*model.SpecialFeature, 0, len(names))
	for i, name := range names {
		pl := playlists[name]
		if pl == nil {
			continue
		}
		features = append(features, &model.SpecialFeature{
			Index:      i + 1,
			Playlist:   name,
			DurationMS: pl.DurationMS(),
			Category:   disc.Classifications[name],
		})
	}
	return features
}

func isSpecialCategory(cat model.Category) bool {
	return cat != "" && cat != model.CategoryEpisode && cat != model.CategoryPlayAll
}

// applyMenuVisibility implements spec §4.3.10, setting MenuVisible on each
// feature in place.
func applyMenuVisibility(disc *model.DiscAnalysis, features []*model.SpecialFeature, playlists map[string]*model.Playlist) {
	k := countVisibleContentButtons(disc)
	if k < 0 {
		for _, f := range features {
			f.MenuVisible = playlistNumber(f.Playlist) < menuVisibleMaxPlaylistNo && f.DurationMS >= menuVisibleMinDurationMS
		}
		return
	}

	ranked := append([]*model.SpecialFeature(nil), features...)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := menuScore(ranked[i]), menuScore(ranked[j])
		if si != sj {
			return si > sj
		}
		pi, pj := -playlistNumber(ranked[i].Playlist), -playlistNumber(ranked[j].Playlist)
		if pi != pj {
			return pi > pj
		}
		return ranked[i].DurationMS < ranked[j].DurationMS
	})
	visible := map[string]bool{}
	for i := 0; i < k && i < len(ranked); i++ {
		visible[ranked[i].Playlist] = true
	}
	for _, f := range features {
		f.MenuVisible = visible[f.Playlist]
	}
}

func menuScore(f *model.SpecialFeature) int {
	score := 0
	if playlistNumber(f.Playlist) < menuVisibleMaxPlaylistNo {
		score += 2
	}
	if f.DurationMS >= menuVisibleMinDurationMS {
		score++
	}
	return score
}

// countVisibleContentButtons returns K, the inferred count of top-level
// menu entries: distinct (page, button) pairs whose IG button jumps to a
// title without also writing register 2 (a chapter selector write).
// Returns -1 when there is no IG evidence to count.
func countVisibleContentButtons(disc *model.DiscAnalysis) int {
	if disc.Hints == nil || len(disc.Hints.IGHints) == 0 {
		return -1
	}
	seen := map[[2]int]bool{}
	for _, hint := range disc.Hints.IGHints {
		if hint.JumpTitle == nil {
			continue
		}
		if _, hasReg2 := hint.Registers[2]; hasReg2 {
			continue
		}
		seen[[2]int{hint.PageID, hint.ButtonID}] = true
	}
	return len(seen)
}

// playlistNumber parses the numeric id out of a playlist filename such as
// "00002.mpls". Returns -1 if unparseable.
func playlistNumber(filename string) int {
	stem := strings.TrimSuffix(filename, ".mpls")
	n, err := strconv.Atoi(stem)
	if err != nil {
		return -1
	}
	return n
}

func regKeyString(r *int) string {
	if r == nil {
		return "null"
	}
	return strconv.Itoa(*r)
}

func dedupInts(sorted []int) []int {
	out := sorted[:0:0]
	for _, v := range sorted {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}
