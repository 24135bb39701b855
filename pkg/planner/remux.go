package planner

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/kanzaki-rei/bdpl-go/pkg/languages"
	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// sortedPlaylistNames returns playlists' filenames in a stable order, so
// any "first seen" accumulation over the map is deterministic.
func sortedPlaylistNames(playlists map[string]*model.Playlist) []string {
	names := make([]string, 0, len(playlists))
	for name := range playlists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemuxPlan is the planned mkvmerge invocation for one episode, plus the
// chapter XML it references (the caller writes this file and is responsible
// for deleting it afterward, and for invoking Args — the planner never
// spawns a process).
type RemuxPlan struct {
	Args        []string
	ChapterXML  string
	ChapterPath string
	OutputPath  string
}

// BuildRemuxPlan builds the mkvmerge argument vector for one episode, per
// spec §4.4.2: optional --split parts: for a chapter-split episode, then
// --chapters, --title, per-input --language/--track-name pairs, and the
// concatenated m2ts inputs joined with "+".
//
// Grounded on bdpl/export/mkv_chapters.py's export_chapter_mkv /
// get_dry_run_commands command-building logic.
func BuildRemuxPlan(disc *model.DiscAnalysis, ep *model.Episode, mkvmergePath, streamDir, outputPath, chapterPath string) *RemuxPlan {
	chapterXML := BuildChapterXML(ep, disc.Playlists)

	clipPTSBase := clipPTSBaseMap(disc.Playlists)
	clipStreams := clipStreamsMap(disc.Playlists)

	args := []string{mkvmergePath, "-o", outputPath}

	if needsSplit(ep, disc.Playlists, clipPTSBase) {
		seg := ep.Segments[0]
		base := clipPTSBase[seg.ClipID]
		startMS := float64(seg.InMS - base)
		endMS := float64(seg.OutMS - base)
		args = append(args, "--split", fmt.Sprintf("parts:%s-%s", formatChapterTime(startMS), formatChapterTime(endMS)))
	}

	args = append(args, "--chapters", chapterPath)
	args = append(args, "--title", fmt.Sprintf("Episode %d", ep.Ordinal))

	for i, seg := range ep.Segments {
		for _, s := range clipStreams[seg.ClipID] {
			if s.Language != "" {
				args = append(args, "--language", fmt.Sprintf("%d:%s", s.PID, s.Language))
			}
			name := trackName(s)
			if name != "" {
				args = append(args, "--track-name", fmt.Sprintf("%d:%s", s.PID, name))
			}
		}
		if i > 0 {
			args = append(args, "+")
		}
		args = append(args, filepath.Join(streamDir, seg.ClipID+".m2ts"))
	}

	return &RemuxPlan{
		Args:        args,
		ChapterXML:  chapterXML,
		ChapterPath: chapterPath,
		OutputPath:  outputPath,
	}
}

func trackName(s model.StreamDescriptor) string {
	if s.CodecName != "" && s.Language != "" {
		return languages.Name(s.Language) + " " + s.CodecName
	}
	return s.CodecName
}

// needsSplit reports whether ep is a sub-range of one larger backing file:
// a single segment whose duration is under 95% of the cumulative duration of
// every play item across the disc referencing that clip id.
func needsSplit(ep *model.Episode, playlists map[string]*model.Playlist, clipPTSBase map[string]int) bool {
	if len(ep.Segments) != 1 {
		return false
	}
	seg := ep.Segments[0]
	if _, ok := clipPTSBase[seg.ClipID]; !ok {
		return false
	}
	total := 0
	for _, pl := range playlists {
		for _, pi := range pl.PlayItems {
			if pi.ClipID == seg.ClipID {
				total += pi.DurationMS()
			}
		}
	}
	return float64(ep.DurationMS) < chapterSplitThreshold*float64(total)
}

// clipPTSBaseMap returns, per clip id, the smallest play-item in-time (ms)
// across every playlist referencing that clip — the PTS base a remuxed
// segment must subtract to get a VLC/mkvmerge-relative offset into the
// backing m2ts.
func clipPTSBaseMap(playlists map[string]*model.Playlist) map[string]int {
	base := map[string]int{}
	for _, name := range sortedPlaylistNames(playlists) {
		pl := playlists[name]
		for _, pi := range pl.PlayItems {
			ms := pi.InMS()
			if cur, ok := base[pi.ClipID]; !ok || ms < cur {
				base[pi.ClipID] = ms
			}
		}
	}
	return base
}

// clipStreamsMap returns, per clip id, the first non-empty stream
// descriptor list seen for that clip across every playlist's play items.
func clipStreamsMap(playlists map[string]*model.Playlist) map[string][]model.StreamDescriptor {
	out := map[string][]model.StreamDescriptor{}
	for _, name := range sortedPlaylistNames(playlists) {
		pl := playlists[name]
		for _, pi := range pl.PlayItems {
			if _, ok := out[pi.ClipID]; !ok && len(pi.Streams) > 0 {
				out[pi.ClipID] = pi.Streams
			}
		}
	}
	return out
}
