package analysis

import "github.com/kanzaki-rei/bdpl-go/pkg/model"

// longItemMS is the duration floor past which a play item counts as "long"
// for Play-All detection (spec §4.3.3 rule c). Strategy B's episode cut uses
// its own threshold, playAllCutMS.
const longItemMS = 10 * 60 * 1000

// DetectPlayAll marks every playlist in working that qualifies as a "Play
// All" compilation and returns the set of their filenames.
//
// Grounded on bdpl/analyze/segment_graph.py's detect_play_all (spec §4.3.3).
func DetectPlayAll(working []*model.Playlist, quantizeMS int) map[string]bool {
	keySets := make(map[string]map[string]bool, len(working))
	singleItemOwner := map[string]string{} // loose key -> playlist filename, only for 1-item playlists
	for _, pl := range working {
		keys := pl.LooseKeys(quantizeMS)
		set := make(map[string]bool, len(keys))
		for _, k := range keys {
			set[k] = true
		}
		keySets[pl.Filename] = set
		if len(keys) == 1 {
			singleItemOwner[keys[0]] = pl.Filename
		}
	}

	playAll := map[string]bool{}
	for _, pl := range working {
		if len(pl.PlayItems) < 2 {
			continue
		}
		keys := pl.LooseKeys(quantizeMS)
		set := keySets[pl.Filename]

		if isSupersetOfAnother(pl.Filename, set, keySets) {
			playAll[pl.Filename] = true
			continue
		}
		if countSingleItemMatches(keys, pl.Filename, singleItemOwner) >= 2 {
			playAll[pl.Filename] = true
			continue
		}
		if countLongItems(pl) >= 2 {
			playAll[pl.Filename] = true
			continue
		}
	}
	return playAll
}

// isSupersetOfAnother reports whether set is a (non-strict) superset of
// some other playlist's full key set, per spec §4.3.3 rule (a) — equal key
// sets qualify too, matching the original's non-strict subset test
// (segment_graph.py's other_keys.issubset(my_keys)).
func isSupersetOfAnother(name string, set map[string]bool, all map[string]map[string]bool) bool {
	for other, otherSet := range all {
		if other == name || len(otherSet) == 0 {
			continue
		}
		if isSuperset(set, otherSet) {
			return true
		}
	}
	return false
}

func isSuperset(set, sub map[string]bool) bool {
	for k := range sub {
		if !set[k] {
			return false
		}
	}
	return true
}

func countSingleItemMatches(keys []string, selfName string, singleItemOwner map[string]string) int {
	count := 0
	for _, k := range keys {
		if owner, ok := singleItemOwner[k]; ok && owner != selfName {
			count++
		}
	}
	return count
}

func countLongItems(pl *model.Playlist) int {
	count := 0
	for _, pi := range pl.PlayItems {
		if pi.DurationMS() > longItemMS {
			count++
		}
	}
	return count
}
