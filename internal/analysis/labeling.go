package analysis

import "github.com/kanzaki-rei/bdpl-go/pkg/model"

const (
	legalMaxMS    = 30 * 1000
	opEdMinMS     = 60 * 1000
	opEdMaxMS     = 135 * 1000
	previewMaxMS  = 60 * 1000
	bodyMinMS     = 5 * 60 * 1000
)

// LabelSegments assigns each play item in working a Label, first match
// wins, using the disc-wide segment-frequency map built by
// BuildSegmentFrequency.
//
// Grounded on bdpl/analyze/segment_graph.py's label_segments (spec §4.3.4).
func LabelSegments(working []*model.Playlist, freq map[string]*model.FrequencyStats, quantizeMS int) {
	for _, pl := range working {
		keys := pl.LooseKeys(quantizeMS)
		for i, pi := range pl.PlayItems {
			pi.Label = labelFor(pi, keys[i], i, len(keys), freq)
		}
	}
}

func labelFor(pi *model.PlayItem, key string, idx, n int, freq map[string]*model.FrequencyStats) model.Label {
	dur := pi.DurationMS()
	stats := freq[key]

	if dur < legalMaxMS && stats != nil && stats.Count >= 2 {
		return model.LabelLegal
	}
	if dur >= opEdMinMS && dur <= opEdMaxMS {
		if stats != nil && stats.FirstItemCount >= 2 {
			return model.LabelOP
		}
		if stats != nil && (stats.LastItemCount >= 2 || stats.SecondLastCount >= 2) {
			return model.LabelED
		}
	}
	if idx == n-1 && dur < previewMaxMS {
		return model.LabelPreview
	}
	if dur > bodyMinMS {
		return model.LabelBody
	}
	return model.LabelUnknown
}
