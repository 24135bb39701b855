package analysis

import (
	"math"
	"sort"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

const (
	sceneCreditsTrimMS          = 120 * 1000
	sceneFirstAnchorThresholdMS = 250
	sceneMaxAnchors             = 4
)

// ReconstructScenes implements spec §4.3.11: for each episode, builds up to
// four evenly-spaced scene boundaries from IG register-2 chapter anchors,
// falling back to the episode's own chapter marks when no IG data exists,
// and sets ep.Scenes in place.
//
// Grounded on internal/analysis/ordering.go's chapter-boundary helpers
// (chapterBoundariesMS, markLocalPositionsMS) for the underlying chapter
// math. The IG-anchor correlation itself has no original_source analogue —
// bdpl's Python implementation never grew IG-driven scene detection — so
// this is built fresh against spec §4.3.11 and pkg/bdmv/igstream.go's
// IGButtonHint shape.
func ReconstructScenes(disc *model.DiscAnalysis, episodes []*model.Episode, playlists map[string]*model.Playlist) {
	starts := map[string]int{} // playlist filename -> cumulative ms consumed by prior episodes on it
	for _, ep := range episodes {
		epStart := starts[ep.PlaylistName]
		starts[ep.PlaylistName] = epStart + ep.DurationMS

		anchors := sceneAnchorsMS(disc, ep, epStart, playlists)
		anchors = sanitizeAnchors(anchors, ep.DurationMS)
		anchors = downsampleAnchors(anchors)
		ep.Scenes = anchorsToScenes(anchors, ep.DurationMS, ep.PlaylistName, ep.Segments)
	}
}

func sceneAnchorsMS(disc *model.DiscAnalysis, ep *model.Episode, epStart int, playlists map[string]*model.Playlist) []int {
	var anchors []int
	if disc.Hints != nil && len(disc.Hints.IGHints) > 0 {
		anchors = append(anchors, directIGAnchors(disc, ep, epStart, playlists)...)
		anchors = append(anchors, playAllIGAnchors(disc, ep, playlists)...)
	}
	if len(anchors) == 0 {
		anchors = fallbackChapterAnchors(ep, epStart, playlists)
	}
	sort.Ints(anchors)
	return dedupInts(anchors)
}

// directIGAnchors collects source (a): chapter marks of the episode's own
// playlist whose entry-point index appears in a register-2 write made by a
// button that jumps to a title mapped (via the index.bdmv hint table) to
// this exact playlist.
func directIGAnchors(disc *model.DiscAnalysis, ep *model.Episode, epStart int, playlists map[string]*model.Playlist) []int {
	pl := playlists[ep.PlaylistName]
	if pl == nil || disc.Hints == nil {
		return nil
	}
	titles := titlesForPlaylist(disc.Hints.TitlePlaylists, ep.PlaylistName)
	if len(titles) == 0 {
		return nil
	}
	bounds := chapterBoundariesMS(pl)
	var out []int
	for _, hint := range disc.Hints.IGHints {
		if hint.JumpTitle == nil || !containsInt(titles, *hint.JumpTitle) {
			continue
		}
		v, ok := hint.Registers[2]
		if !ok {
			continue
		}
		idx := int(v)
		if idx < 0 || idx >= len(bounds) {
			continue
		}
		out = append(out, bounds[idx]-epStart)
	}
	return out
}

// playAllIGAnchors collects source (b): chapter marks on any Play-All
// playlist whose entry-point index appears in any register-2 write
// anywhere on the disc, restricted to marks that fall within the one play
// item matching the episode's first segment clip id, remapped to that play
// item's own local timeline.
func playAllIGAnchors(disc *model.DiscAnalysis, ep *model.Episode, playlists map[string]*model.Playlist) []int {
	if disc.Hints == nil || len(disc.Hints.IGChapterRegisterWrites) == 0 || len(ep.Segments) == 0 {
		return nil
	}
	targetClip := ep.Segments[0].ClipID

	var out []int
	for name, isPlayAll := range disc.PlayAll {
		if !isPlayAll {
			continue
		}
		pl := playlists[name]
		if pl == nil {
			continue
		}
		bounds := chapterBoundariesMS(pl)
		for _, idx := range disc.Hints.IGChapterRegisterWrites {
			if idx < 0 || idx >= len(bounds) {
				continue
			}
			clipID, localMS, ok := findOwningItemLocalMS(pl, bounds[idx])
			if !ok || clipID != targetClip {
				continue
			}
			out = append(out, localMS)
		}
	}
	return out
}

// fallbackChapterAnchors implements the no-IG-data path: the episode's own
// playlist's chapter marks, localized to the episode's span within that
// playlist (epStart accounts for prior chapter-split episodes sharing it).
func fallbackChapterAnchors(ep *model.Episode, epStart int, playlists map[string]*model.Playlist) []int {
	pl := playlists[ep.PlaylistName]
	if pl == nil {
		return nil
	}
	var out []int
	for _, b := range chapterBoundariesMS(pl) {
		local := b - epStart
		if local < 0 || local >= ep.DurationMS {
			continue
		}
		out = append(out, local)
	}
	return out
}

// findOwningItemLocalMS finds the play item owning playlist-cumulative
// position posMS and returns its clip id and posMS expressed relative to
// that item's own start.
func findOwningItemLocalMS(pl *model.Playlist, posMS int) (clipID string, localMS int, ok bool) {
	cum := 0
	for _, pi := range pl.PlayItems {
		start := cum
		end := cum + pi.DurationMS()
		cum = end
		if posMS >= start && posMS < end {
			return pi.ClipID, posMS - start, true
		}
	}
	return "", 0, false
}

// sanitizeAnchors drops negative/out-of-range anchors, then — per spec — if
// at least four anchors lie before duration-120s, drops any anchor later
// than that cutoff (trims end-of-credits markers).
func sanitizeAnchors(anchors []int, durationMS int) []int {
	var clean []int
	for _, a := range anchors {
		if a >= 0 && a < durationMS {
			clean = append(clean, a)
		}
	}
	sort.Ints(clean)
	clean = dedupInts(clean)

	cutoff := durationMS - sceneCreditsTrimMS
	before := 0
	for _, a := range clean {
		if a < cutoff {
			before++
		}
	}
	if before >= 4 {
		var trimmed []int
		for _, a := range clean {
			if a < cutoff {
				trimmed = append(trimmed, a)
			}
		}
		clean = trimmed
	}
	return clean
}

// downsampleAnchors implements spec §4.3.11's fabricate-then-resample
// order: a leading 0.0 anchor is synthesized first (when the first real
// anchor is > 250ms out), and only then is the list downsampled to at most
// four evenly-spaced elements. The resample always keeps index 0, so a
// synthesized 0.0 anchor survives it; real anchors between the picked
// indices are the ones dropped.
func downsampleAnchors(anchors []int) []int {
	if len(anchors) == 0 {
		return []int{0}
	}
	if anchors[0] > sceneFirstAnchorThresholdMS {
		anchors = append([]int{0}, anchors...)
	}
	n := len(anchors)
	if n <= sceneMaxAnchors {
		return anchors
	}
	out := make([]int, 0, sceneMaxAnchors)
	for i := 0; i < sceneMaxAnchors; i++ {
		idx := int(math.Round(float64(i) * float64(n-1) / 3.0))
		out = append(out, anchors[idx])
	}
	return dedupInts(out)
}

func anchorsToScenes(anchors []int, durationMS int, playlistName string, segments []model.SegmentRef) []model.SegmentRef {
	if len(anchors) == 0 {
		anchors = []int{0}
	}
	clipID := ""
	if len(segments) > 0 {
		clipID = segments[0].ClipID
	}
	scenes := make([]model.SegmentRef, 0, len(anchors))
	for i, start := range anchors {
		end := durationMS
		if i+1 < len(anchors) {
			end = anchors[i+1]
		}
		scenes = append(scenes, model.SegmentRef{
			Key:        model.SceneKey(playlistName, i),
			ClipID:     clipID,
			InMS:       start,
			OutMS:      end,
			DurationMS: end - start,
			Label:      model.LabelUnknown,
		})
	}
	return scenes
}

func titlesForPlaylist(titlePlaylists map[int]string, name string) []int {
	var out []int
	for t, n := range titlePlaylists {
		if n == name {
			out = append(out, t)
		}
	}
	return out
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
