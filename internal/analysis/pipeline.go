package analysis

import "github.com/kanzaki-rei/bdpl-go/pkg/model"

// Analyze runs the full six-stage pipeline plus its three enrichment passes
// over a disc's parsed playlists, clips, and navigation hints, and returns
// the frozen DiscAnalysis. disc.Playlists and disc.Clips must already be
// populated by the caller (the loader); everything else is written here.
//
// Grounded on bdpl/analyze/__init__.py's scan_disc, which drives the same
// stage sequence; generalized to also run the IG-based special-feature and
// scene-reconstruction enrichment passes (spec §4.3.9-§4.3.11) that
// original_source never grew.
func Analyze(disc *model.DiscAnalysis, quantizeMS int) *model.DiscAnalysis {
	working := Dedup(disc, quantizeMS)

	freq := BuildSegmentFrequency(working, quantizeMS)
	disc.SegmentFreq = freq

	playAll := DetectPlayAll(working, quantizeMS)
	disc.PlayAll = playAll

	LabelSegments(working, freq, quantizeMS)

	ClassifyPlaylists(disc, working, playAll)
	backfillDuplicateClassifications(disc, working)

	episodes := OrderEpisodes(disc, working, quantizeMS)
	reclassifyPlayAllOnlyEpisodes(disc, episodes, playAll)
	episodes = ApplySingleTitleCollapseGuard(disc, episodes, working, quantizeMS)

	byName := playlistsByName(working)
	RefineConfidence(disc, episodes, byName)

	disc.Episodes = episodes

	disc.Specials = ExtractSpecialFeatures(disc, disc.Playlists)
	ReconstructScenes(disc, episodes, disc.Playlists)

	return disc
}

// backfillDuplicateClassifications gives every playlist dropped from the
// working set by Dedup the same category as its cluster's representative,
// so disc.Classifications holds exactly one category per input playlist
// (spec §8 property 5) even though only representatives went through
// ClassifyPlaylists.
func backfillDuplicateClassifications(disc *model.DiscAnalysis, working []*model.Playlist) {
	inWorking := map[string]bool{}
	for _, pl := range working {
		inWorking[pl.Filename] = true
	}
	for _, cluster := range disc.DuplicateGroups {
		var repCat model.Category
		found := false
		for _, name := range cluster {
			if inWorking[name] {
				repCat = disc.Classifications[name]
				found = true
				break
			}
		}
		if !found {
			continue
		}
		for _, name := range cluster {
			if _, ok := disc.Classifications[name]; !ok {
				disc.Classifications[name] = repCat
			}
		}
	}
}

// reclassifyPlayAllOnlyEpisodes mirrors bdpl/analyze/__init__.py's
// scan_disc step 6: when every inferred episode comes from decomposing a
// Play-All playlist, any playlist still classified "episode" whose clips
// never appear in the episode list was a misclassified extra, not a second
// independent episode source.
func reclassifyPlayAllOnlyEpisodes(disc *model.DiscAnalysis, episodes []*model.Episode, playAll map[string]bool) {
	if len(episodes) == 0 {
		return
	}
	for _, ep := range episodes {
		if !playAll[ep.PlaylistName] {
			return
		}
	}
	epClipIDs := map[string]bool{}
	for _, ep := range episodes {
		for _, seg := range ep.Segments {
			epClipIDs[seg.ClipID] = true
		}
	}
	for name, cat := range disc.Classifications {
		if cat != model.CategoryEpisode {
			continue
		}
		pl := disc.Playlists[name]
		if pl == nil {
			continue
		}
		hasEpisodeClip := false
		for _, pi := range pl.PlayItems {
			if epClipIDs[pi.ClipID] {
				hasEpisodeClip = true
				break
			}
		}
		if !hasEpisodeClip {
			disc.Classifications[name] = model.CategoryExtra
		}
	}
}
