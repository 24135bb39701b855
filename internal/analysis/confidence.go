package analysis

import "github.com/kanzaki-rei/bdpl-go/pkg/model"

const chapterAlignTolMS = 500

// RefineConfidence boosts each episode's confidence per spec §4.3.8: +0.1
// when the episode's playlist is named by the title-to-playlist hint map,
// and a further +0.1 across all episodes when the leading N IG
// register-2 writes line up, in order, with the chapter index at which
// each episode begins.
//
// Grounded on bdpl/analyze/clustering.py's refine_confidence.
func RefineConfidence(disc *model.DiscAnalysis, episodes []*model.Episode, byName map[string]*model.Playlist) {
	if disc.Hints == nil {
		return
	}
	applyTitleHintBoost(disc.Hints.TitlePlaylists, episodes)
	applyChapterAlignmentBoost(disc.Hints.IGChapterRegisterWrites, episodes, byName)
}

func applyTitleHintBoost(titlePlaylists map[int]string, episodes []*model.Episode) {
	if len(titlePlaylists) == 0 {
		return
	}
	named := map[string]bool{}
	for _, name := range titlePlaylists {
		named[name] = true
	}
	for _, ep := range episodes {
		if named[ep.PlaylistName] {
			ep.Confidence = capConfidence(ep.Confidence + 0.1)
		}
	}
}

func applyChapterAlignmentBoost(igWrites []int, episodes []*model.Episode, byName map[string]*model.Playlist) {
	if len(igWrites) < 2 || len(episodes) == 0 {
		return
	}
	n := len(episodes)
	if n > len(igWrites) {
		return
	}

	starts := map[string]int{} // playlist filename -> cumulative offset consumed so far
	indices := make([]int, 0, n)
	for _, ep := range episodes {
		startMS := starts[ep.PlaylistName]
		starts[ep.PlaylistName] = startMS + ep.DurationMS

		pl := byName[ep.PlaylistName]
		if pl == nil {
			return
		}
		bounds := chapterBoundariesMS(pl)
		idx := nearestChapterIndex(bounds, startMS)
		if idx < 0 {
			return
		}
		indices = append(indices, idx)
	}

	for i := 0; i < n; i++ {
		if indices[i] != igWrites[i] {
			return
		}
	}
	for _, ep := range episodes {
		ep.Confidence = capConfidence(ep.Confidence + 0.1)
	}
}

func nearestChapterIndex(bounds []int, targetMS int) int {
	for i, b := range bounds {
		if abs(b-targetMS) <= chapterAlignTolMS {
			return i
		}
	}
	return -1
}

func capConfidence(c float64) float64 {
	if c > 1.0 {
		return 1.0
	}
	return c
}
