package analysis

import "github.com/kanzaki-rei/bdpl-go/pkg/model"

// episodeLengthMS is the duration floor ("episode-length playlist") used by
// both the frequency pass and segment labeling.
const episodeLengthMS = 10 * 60 * 1000

// BuildSegmentFrequency counts, across the working set, how many playlists
// each loose-signature segment key appears in, plus how often that key is
// the first, last, or second-to-last play item of a playlist at least
// episodeLengthMS long.
//
// Grounded on bdpl/analyze/segment_graph.py's build_segment_frequency
// (spec §4.3.2).
func BuildSegmentFrequency(working []*model.Playlist, quantizeMS int) map[string]*model.FrequencyStats {
	freq := map[string]*model.FrequencyStats{}

	get := func(key string) *model.FrequencyStats {
		s, ok := freq[key]
		if !ok {
			s = &model.FrequencyStats{}
			freq[key] = s
		}
		return s
	}

	for _, pl := range working {
		seen := map[string]bool{}
		for _, key := range pl.LooseKeys(quantizeMS) {
			if !seen[key] {
				get(key).Count++
				seen[key] = true
			}
		}

		if pl.DurationMS() < episodeLengthMS || len(pl.PlayItems) == 0 {
			continue
		}
		keys := pl.LooseKeys(quantizeMS)
		get(keys[0]).FirstItemCount++
		get(keys[len(keys)-1]).LastItemCount++
		if len(keys) >= 2 {
			get(keys[len(keys)-2]).SecondLastCount++
		}
	}

	return freq
}
