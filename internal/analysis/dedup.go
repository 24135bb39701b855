// Package analysis implements the deterministic six-stage pipeline plus
// three enrichment passes that turn a raw set of parsed playlists and clips
// into episodes, special features, and warnings.
//
// Grounded on internal/translator/translator.go's pipeline-driver shape
// (Translate calls a fixed sequence of private step methods, each doing one
// thing and returning early on error) from the teacher, and on
// bdpl/analyze/*.py (original_source) for stage semantics.
package analysis

import (
	"sort"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// Dedup groups playlists sharing the same loose signature, picks one
// representative per cluster, and returns the working set the rest of the
// pipeline operates on (representatives plus every playlist that wasn't in
// a cluster). The full playlist set is left untouched in disc.Playlists;
// only disc.DuplicateGroups and disc.Warnings are written.
//
// Grounded on bdpl/analyze/signatures.py's find_duplicates and
// bdpl/analyze/clustering.py's pick_representative (spec §4.3.1).
func Dedup(disc *model.DiscAnalysis, quantizeMS int) []*model.Playlist {
	names := sortedPlaylistNames(disc.Playlists)

	groups := map[string][]*model.Playlist{}
	for _, name := range names {
		pl := disc.Playlists[name]
		sig := pl.LooseSignature(quantizeMS)
		groups[sig] = append(groups[sig], pl)
	}

	var sigs []string
	for sig := range groups {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)

	inCluster := map[string]bool{}
	var working []*model.Playlist
	var duplicateGroups [][]string

	for _, sig := range sigs {
		cluster := groups[sig]
		if len(cluster) < 2 {
			continue
		}
		clusterNames := make([]string, len(cluster))
		for i, pl := range cluster {
			clusterNames[i] = pl.Filename
			inCluster[pl.Filename] = true
		}
		sort.Strings(clusterNames)
		duplicateGroups = append(duplicateGroups, clusterNames)

		rep := pickRepresentative(cluster, disc.Clips)
		working = append(working, rep)
	}

	for _, name := range names {
		if !inCluster[name] {
			working = append(working, disc.Playlists[name])
		}
	}

	sort.Slice(duplicateGroups, func(i, j int) bool {
		return duplicateGroups[i][0] < duplicateGroups[j][0]
	})
	disc.DuplicateGroups = duplicateGroups

	if len(duplicateGroups) > 0 {
		disc.Warnings = append(disc.Warnings, &model.Warning{
			Code:    model.WarningDuplicates,
			Message: "duplicate playlist clusters detected",
			Context: map[string]any{"clusters": duplicateGroups},
		})
	}

	sort.Slice(working, func(i, j int) bool { return working[i].Filename < working[j].Filename })
	return working
}

// pickRepresentative prefers the playlist with more streams on its first
// clip, then more chapters, then the shorter filename. On a full tie the
// earliest member of the cluster is kept.
func pickRepresentative(cluster []*model.Playlist, clips map[string]*model.ClipInfo) *model.Playlist {
	best := cluster[0]
	bestScore := representativeScore(best, clips)
	for _, pl := range cluster[1:] {
		score := representativeScore(pl, clips)
		if scoreGreater(score, bestScore) {
			best = pl
			bestScore = score
		}
	}
	return best
}

type repScore struct {
	streamCount  int
	chapterCount int
	negNameLen   int
}

func representativeScore(pl *model.Playlist, clips map[string]*model.ClipInfo) repScore {
	streamCount := 0
	if len(pl.PlayItems) > 0 {
		cid := pl.PlayItems[0].ClipID
		if clip, ok := clips[cid]; ok {
			streamCount = len(clip.Streams)
		}
		if streamCount == 0 {
			streamCount = len(pl.PlayItems[0].Streams)
		}
	}
	return repScore{
		streamCount:  streamCount,
		chapterCount: len(pl.Marks),
		negNameLen:   -len(pl.Filename),
	}
}

func scoreGreater(a, b repScore) bool {
	if a.streamCount != b.streamCount {
		return a.streamCount > b.streamCount
	}
	if a.chapterCount != b.chapterCount {
		return a.chapterCount > b.chapterCount
	}
	return a.negNameLen > b.negNameLen
}

func sortedPlaylistNames(playlists map[string]*model.Playlist) []string {
	names := make([]string, 0, len(playlists))
	for name := range playlists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
