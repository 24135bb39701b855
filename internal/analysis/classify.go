package analysis

import "github.com/kanzaki-rei/bdpl-go/pkg/model"

const (
	bumperMaxMS       = 10 * 1000
	archiveMaxTotalMS = 300 * 1000
	archiveMaxAvgMS   = 500
	archiveMinItems   = 20
	archiveMinUnique  = 0.8
	extraMinMS        = 10 * 1000
	extraMaxMS        = 180 * 1000
	episodeMinMS      = 10 * 60 * 1000
)

// ClassifyPlaylists assigns each playlist in working exactly one Category,
// first match wins, and records the result in disc.Classifications.
//
// Grounded on bdpl/analyze/clustering.py's classify_playlist (spec §4.3.5).
func ClassifyPlaylists(disc *model.DiscAnalysis, working []*model.Playlist, playAll map[string]bool) {
	if disc.Classifications == nil {
		disc.Classifications = map[string]model.Category{}
	}
	for _, pl := range working {
		disc.Classifications[pl.Filename] = classifyOne(pl, playAll)
	}
}

func classifyOne(pl *model.Playlist, playAll map[string]bool) model.Category {
	if playAll[pl.Filename] {
		return model.CategoryPlayAll
	}
	if isDigitalArchiveShape(pl) {
		return model.CategoryDigitalArchive
	}
	dur := pl.DurationMS()
	if dur < bumperMaxMS {
		return model.CategoryBumper
	}
	if len(pl.PlayItems) == 1 && dur >= opEdMinMS && dur <= opEdMaxMS {
		if dur < 90*1000 {
			return model.CategoryCreditlessOP
		}
		return model.CategoryCreditlessED
	}
	if dur >= extraMinMS && dur < extraMaxMS {
		return model.CategoryExtra
	}
	if dur >= episodeMinMS {
		for _, pi := range pl.PlayItems {
			if pi.Label == model.LabelBody {
				return model.CategoryEpisode
			}
		}
		return model.CategoryExtra
	}
	return model.CategoryExtra
}

func isDigitalArchiveShape(pl *model.Playlist) bool {
	n := len(pl.PlayItems)
	if n < archiveMinItems {
		return false
	}
	total := pl.DurationMS()
	if total > archiveMaxTotalMS {
		return false
	}
	if float64(total)/float64(n) > archiveMaxAvgMS {
		return false
	}
	clips := map[string]bool{}
	for _, pi := range pl.PlayItems {
		clips[pi.ClipID] = true
	}
	ratio := float64(len(clips)) / float64(n)
	return ratio >= archiveMinUnique
}
