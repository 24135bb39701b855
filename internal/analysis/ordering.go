package analysis

import (
	"math"
	"sort"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

const (
	bodyCollapseGridMS = 5000
	playAllCutMS       = 5 * 60 * 1000
	chapterTargetMS    = 25 * 60 * 1000
	splitLowFactor     = 0.6
	splitHighFactor    = 1.4
)

// OrderEpisodes runs Strategy A (individual episode playlists), Strategy B
// (Play-All decomposition), and Strategy C (chapter splitting) as needed,
// selects between them, and returns the final ordinal-numbered episode
// list. It appends NO_EPISODES or PLAY_ALL_ONLY to disc.Warnings as
// appropriate.
//
// Grounded on bdpl/analyze/clustering.py's order_episodes (spec §4.3.6).
func OrderEpisodes(disc *model.DiscAnalysis, working []*model.Playlist, quantizeMS int) []*model.Episode {
	byName := playlistsByName(working)

	a := strategyA(working, disc.Classifications, quantizeMS)
	b := strategyB(working, disc.PlayAll, quantizeMS)

	var chosen []*model.Episode
	usedB := false
	switch {
	case len(a) > 0 && len(b) > 0:
		if len(b) > len(a) && meanDurationMS(b) > 1.5*meanDurationMS(a) {
			chosen, usedB = b, true
		} else {
			chosen = a
		}
	case len(a) > 0:
		chosen = a
	case len(b) > 0:
		chosen, usedB = b, true
	}

	if len(a) == 1 {
		if pl := byName[a[0].PlaylistName]; pl != nil && countEntryPointMarks(pl) >= 4 {
			if c := strategyC(pl, quantizeMS); c != nil {
				chosen, usedB = c, false
			}
		}
	} else if usedB && len(chosen) <= 1 {
		if longest := longestPlayAll(working, disc.PlayAll); longest != nil && countEntryPointMarks(longest) > 0 {
			if c := strategyC(longest, quantizeMS); c != nil {
				chosen, usedB = c, false
			}
		}
	}

	if len(chosen) == 0 {
		disc.Warnings = append(disc.Warnings, &model.Warning{
			Code:    model.WarningNoEpisodes,
			Message: "no episodes could be inferred",
		})
		return nil
	}
	if usedB {
		disc.Warnings = append(disc.Warnings, &model.Warning{
			Code:    model.WarningPlayAllOnly,
			Message: "episodes derived exclusively from Play-All decomposition",
		})
	}
	for i, ep := range chosen {
		ep.Ordinal = i + 1
	}
	return chosen
}

// ApplySingleTitleCollapseGuard implements spec §4.3.7: collapses a
// chapter-split episode list back into one episode when the split was
// produced from a single title whose only companion titles are archive
// material, not a second main feature.
func ApplySingleTitleCollapseGuard(disc *model.DiscAnalysis, episodes []*model.Episode, working []*model.Playlist, quantizeMS int) []*model.Episode {
	if len(episodes) < 2 {
		return episodes
	}
	name := episodes[0].PlaylistName
	for _, ep := range episodes[1:] {
		if ep.PlaylistName != name {
			return episodes
		}
	}
	if disc.Hints == nil || disc.Hints.TitlePlaylists == nil {
		return episodes
	}
	titleCount := 0
	hasArchiveCompanion := false
	for _, pn := range disc.Hints.TitlePlaylists {
		if pn == name {
			titleCount++
			continue
		}
		if disc.Classifications[pn] == model.CategoryDigitalArchive {
			hasArchiveCompanion = true
		}
	}
	if titleCount != 1 || !hasArchiveCompanion {
		return episodes
	}
	pl := playlistsByName(working)[name]
	if pl == nil {
		return episodes
	}
	return []*model.Episode{playlistToEpisode(pl, 1, 0.85, quantizeMS)}
}

func strategyA(working []*model.Playlist, classifications map[string]model.Category, quantizeMS int) []*model.Episode {
	var candidates []*model.Playlist
	for _, pl := range working {
		if classifications[pl.Filename] == model.CategoryEpisode {
			candidates = append(candidates, pl)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	groups := map[string][]*model.Playlist{}
	for _, pl := range candidates {
		key := bodyKeyTuple(pl, bodyCollapseGridMS)
		groups[key] = append(groups[key], pl)
	}
	var groupKeys []string
	for k := range groups {
		groupKeys = append(groupKeys, k)
	}
	sort.Strings(groupKeys)

	reps := make([]*model.Playlist, 0, len(groupKeys))
	for _, k := range groupKeys {
		cluster := groups[k]
		best := cluster[0]
		for _, pl := range cluster[1:] {
			if pl.DurationMS() > best.DurationMS() {
				best = pl
			}
		}
		reps = append(reps, best)
	}

	sort.Slice(reps, func(i, j int) bool {
		return firstBodyClipID(reps[i]) < firstBodyClipID(reps[j])
	})

	episodes := make([]*model.Episode, 0, len(reps))
	for _, pl := range reps {
		episodes = append(episodes, playlistToEpisode(pl, 0, 0.9, quantizeMS))
	}
	return episodes
}

func strategyB(working []*model.Playlist, playAll map[string]bool, quantizeMS int) []*model.Episode {
	longest := longestPlayAll(working, playAll)
	if longest == nil {
		return nil
	}
	var episodes []*model.Episode
	for _, pi := range longest.PlayItems {
		if pi.DurationMS() < playAllCutMS {
			continue
		}
		episodes = append(episodes, &model.Episode{
			PlaylistName: longest.Filename,
			DurationMS:   pi.DurationMS(),
			Confidence:   0.7,
			Segments:     []model.SegmentRef{itemToSegmentRef(pi, quantizeMS)},
		})
	}
	return episodes
}

func strategyC(pl *model.Playlist, quantizeMS int) []*model.Episode {
	bounds := chapterBoundariesMS(pl)
	total := pl.DurationMS()
	if len(bounds) < 2 || total <= 0 {
		return nil
	}
	estimate := int(math.Round(float64(total) / float64(chapterTargetMS)))
	if estimate < 1 {
		estimate = 1
	}
	target := float64(total) / float64(estimate)
	tolLow := splitLowFactor * target
	tolHigh := splitHighFactor * target

	var splits []int
	blockStart := 0
	i := 1
	for i < len(bounds) {
		block := bounds[i] - blockStart
		if float64(block) >= tolLow {
			if i+1 < len(bounds) {
				extended := bounds[i+1] - blockStart
				if float64(extended) > tolHigh || math.Abs(float64(block)-target) <= math.Abs(float64(extended)-target) {
					splits = append(splits, bounds[i])
					blockStart = bounds[i]
				}
			} else {
				splits = append(splits, bounds[i])
				blockStart = bounds[i]
			}
		}
		i++
	}
	if trailing := total - blockStart; float64(trailing) >= tolLow {
		splits = append(splits, total)
	}
	if len(splits) == 0 {
		return nil
	}

	boundaries := append([]int{0}, splits...)
	episodeCount := len(boundaries) - 1
	if episodeCount < 2 || abs(episodeCount-estimate) > 1 {
		return nil
	}

	episodes := make([]*model.Episode, 0, episodeCount)
	for i := 0; i < episodeCount; i++ {
		start, end := boundaries[i], boundaries[i+1]
		episodes = append(episodes, &model.Episode{
			PlaylistName: pl.Filename,
			DurationMS:   end - start,
			Confidence:   0.6,
			Segments:     sliceSegments(pl, start, end, quantizeMS),
		})
	}
	return episodes
}

func playlistToEpisode(pl *model.Playlist, ordinal int, confidence float64, quantizeMS int) *model.Episode {
	segs := make([]model.SegmentRef, len(pl.PlayItems))
	for i, pi := range pl.PlayItems {
		segs[i] = itemToSegmentRef(pi, quantizeMS)
	}
	return &model.Episode{
		Ordinal:      ordinal,
		PlaylistName: pl.Filename,
		DurationMS:   pl.DurationMS(),
		Confidence:   confidence,
		Segments:     segs,
	}
}

func itemToSegmentRef(pi *model.PlayItem, quantizeMS int) model.SegmentRef {
	return model.SegmentRef{
		Key:        model.SegmentKey(pi.ClipID, pi.InMS(), pi.OutMS(), quantizeMS),
		ClipID:     pi.ClipID,
		InMS:       pi.InMS(),
		OutMS:      pi.OutMS(),
		DurationMS: pi.DurationMS(),
		Label:      pi.Label,
	}
}

func sliceSegments(pl *model.Playlist, startMS, endMS, quantizeMS int) []model.SegmentRef {
	var segs []model.SegmentRef
	cum := 0
	for _, pi := range pl.PlayItems {
		itemStart := cum
		itemEnd := cum + pi.DurationMS()
		cum = itemEnd
		lo, hi := max(startMS, itemStart), min(endMS, itemEnd)
		if lo >= hi {
			continue
		}
		clipInMS := pi.InMS() + (lo - itemStart)
		clipOutMS := pi.InMS() + (hi - itemStart)
		segs = append(segs, model.SegmentRef{
			Key:        model.SegmentKey(pi.ClipID, clipInMS, clipOutMS, quantizeMS),
			ClipID:     pi.ClipID,
			InMS:       clipInMS,
			OutMS:      clipOutMS,
			DurationMS: clipOutMS - clipInMS,
			Label:      pi.Label,
		})
	}
	return segs
}

func bodyKeyTuple(pl *model.Playlist, gridMS int) string {
	var sigs []model.SegItemSig
	for _, pi := range pl.PlayItems {
		if pi.Label != model.LabelBody {
			continue
		}
		sigs = append(sigs, model.SegItemSig{ClipID: pi.ClipID, InMS: pi.InMS(), OutMS: pi.OutMS()})
	}
	return model.SegmentKeyTuple(sigs, gridMS)
}

func firstBodyClipID(pl *model.Playlist) string {
	for _, pi := range pl.PlayItems {
		if pi.Label == model.LabelBody {
			return pi.ClipID
		}
	}
	return ""
}

// markLocalPositionsMS returns, parallel to pl.Marks, each mark's position
// in the playlist's own local millisecond timeline (-1 if its PlayItemRef
// is out of range).
func markLocalPositionsMS(pl *model.Playlist) []int {
	cum := make([]int, len(pl.PlayItems)+1)
	for i, pi := range pl.PlayItems {
		cum[i+1] = cum[i] + pi.DurationMS()
	}
	positions := make([]int, len(pl.Marks))
	for i, m := range pl.Marks {
		if m.PlayItemRef < 0 || m.PlayItemRef >= len(pl.PlayItems) {
			positions[i] = -1
			continue
		}
		pi := pl.PlayItems[m.PlayItemRef]
		localTicks := int(m.Timestamp) - int(pi.InTime)
		if localTicks < 0 {
			localTicks = 0
		}
		positions[i] = cum[m.PlayItemRef] + model.TicksToMS(uint32(localTicks))
	}
	return positions
}

func chapterBoundariesMS(pl *model.Playlist) []int {
	positions := markLocalPositionsMS(pl)
	var bounds []int
	for i, m := range pl.Marks {
		if m.MarkType != model.ChapterMarkEntryPoint || positions[i] < 0 {
			continue
		}
		bounds = append(bounds, positions[i])
	}
	sort.Ints(bounds)

	deduped := bounds[:0:0]
	for _, b := range bounds {
		if len(deduped) == 0 || deduped[len(deduped)-1] != b {
			deduped = append(deduped, b)
		}
	}
	if len(deduped) == 0 || deduped[0] != 0 {
		deduped = append([]int{0}, deduped...)
	}
	return deduped
}

func countEntryPointMarks(pl *model.Playlist) int {
	n := 0
	for _, m := range pl.Marks {
		if m.MarkType == model.ChapterMarkEntryPoint {
			n++
		}
	}
	return n
}

func longestPlayAll(working []*model.Playlist, playAll map[string]bool) *model.Playlist {
	var longest *model.Playlist
	for _, pl := range working {
		if !playAll[pl.Filename] {
			continue
		}
		if longest == nil || pl.DurationMS() > longest.DurationMS() {
			longest = pl
		}
	}
	return longest
}

func meanDurationMS(episodes []*model.Episode) float64 {
	if len(episodes) == 0 {
		return 0
	}
	total := 0
	for _, ep := range episodes {
		total += ep.DurationMS
	}
	return float64(total) / float64(len(episodes))
}

func playlistsByName(working []*model.Playlist) map[string]*model.Playlist {
	byName := make(map[string]*model.Playlist, len(working))
	for _, pl := range working {
		byName[pl.Filename] = pl
	}
	return byName
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
