// Package planner builds the argument vectors and text documents that an
// embedding host feeds to external tools (mkvmerge, ffmpeg) or writes to
// disk (Matroska chapter XML). It never spawns a process itself — per spec
// §5, external-process invocation is the caller's responsibility.
//
// Grounded on the teacher's pkg/srt.formatDuration/ComposeSRT (build a small
// fixed text format by hand with fmt.Sprintf + strings.Join, no generic
// marshaler) and internal/video/mkv.go's "open source, walk tracks, emit
// derived records" shape, repurposed into pure builders.
package planner

import (
	"fmt"
	"strings"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

const chapterSplitThreshold = 0.95

// chapterPoint is one computed chapter time/label pair, relative to the
// start of its owning episode.
type chapterPoint struct {
	ms    float64
	label string
}

// EpisodeChapters computes the chapter points for one episode within disc,
// per spec §4.4.1. playlists indexes every parsed playlist by filename.
//
// Grounded on bdpl/export/mkv_chapters.py's _chapters_for_episode.
func EpisodeChapters(ep *model.Episode, playlists map[string]*model.Playlist) []chapterPoint {
	pl := playlists[ep.PlaylistName]
	if pl == nil || len(pl.Marks) == 0 {
		return []chapterPoint{{0, fmt.Sprintf("Episode %d", ep.Ordinal)}}
	}

	var points []chapterPoint
	if isChapterSplit(ep, pl) {
		points = chapterSplitPoints(ep, pl)
	} else {
		points = walkedPoints(ep, pl)
	}

	if len(points) == 0 {
		points = []chapterPoint{{0, fmt.Sprintf("Episode %d", ep.Ordinal)}}
	}
	return dedupChapterPoints(points)
}

// isChapterSplit reports whether ep is a sub-range of a single play item
// (its one segment's duration is materially shorter than the play item's).
func isChapterSplit(ep *model.Episode, pl *model.Playlist) bool {
	if len(ep.Segments) != 1 {
		return false
	}
	seg := ep.Segments[0]
	for _, pi := range pl.PlayItems {
		if pi.ClipID == seg.ClipID {
			return float64(ep.DurationMS) < float64(pi.DurationMS())*chapterSplitThreshold
		}
	}
	return false
}

// chapterSplitPoints filters playlist marks whose absolute timestamp falls
// within the episode's one segment and rebases them to the segment start.
func chapterSplitPoints(ep *model.Episode, pl *model.Playlist) []chapterPoint {
	seg := ep.Segments[0]
	var points []chapterPoint
	for _, mk := range pl.Marks {
		chMS := model.TicksToMS(mk.Timestamp)
		if chMS >= seg.InMS-100 && chMS < seg.OutMS-100 {
			rel := float64(chMS - seg.InMS)
			if rel < 0 {
				rel = 0
			}
			points = append(points, chapterPoint{rel, fmt.Sprintf("Chapter %d", len(points)+1)})
		}
	}
	return points
}

// walkedPoints matches each episode segment to its source play item by clip
// id and absolute in-time, then emits every mark attached to that play item,
// accumulating an offset as segments are walked in order.
func walkedPoints(ep *model.Episode, pl *model.Playlist) []chapterPoint {
	var points []chapterPoint
	offsetMS := 0.0
	for _, seg := range ep.Segments {
		for piIdx, pi := range pl.PlayItems {
			if pi.ClipID != seg.ClipID {
				continue
			}
			if abs(pi.InMS()-seg.InMS) > 1000 {
				continue
			}
			for _, mk := range pl.Marks {
				if mk.PlayItemRef != piIdx {
					continue
				}
				chMS := model.TicksToMS(mk.Timestamp)
				rel := offsetMS + float64(chMS-pi.InMS())
				if rel < -500 {
					continue
				}
				if rel < 0 {
					rel = 0
				}
				points = append(points, chapterPoint{rel, fmt.Sprintf("Chapter %d", len(points)+1)})
			}
			break
		}
		offsetMS += float64(seg.DurationMS)
	}
	return points
}

// dedupChapterPoints sorts by time and drops points whose rounded-ms
// timestamp collides with one already kept.
func dedupChapterPoints(points []chapterPoint) []chapterPoint {
	sorted := append([]chapterPoint(nil), points...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].ms < sorted[j-1].ms; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	seen := map[int]bool{}
	var out []chapterPoint
	for _, p := range sorted {
		rounded := int(p.ms + 0.5)
		if seen[rounded] {
			continue
		}
		seen[rounded] = true
		out = append(out, p)
	}
	return out
}

// BuildChapterXML renders the Matroska XML chapters document for the given
// points, per spec §4.4.1: one EditionEntry (default=1, ordered=0), one
// ChapterAtom per point with a ChapterTimeStart and und-language
// ChapterDisplay.
func BuildChapterXML(ep *model.Episode, playlists map[string]*model.Playlist) string {
	points := EpisodeChapters(ep, playlists)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<Chapters>\n")
	b.WriteString("  <EditionEntry>\n")
	b.WriteString("    <EditionFlagDefault>1</EditionFlagDefault>\n")
	b.WriteString("    <EditionFlagOrdered>0</EditionFlagOrdered>\n")
	for _, p := range points {
		b.WriteString("    <ChapterAtom>\n")
		fmt.Fprintf(&b, "      <ChapterTimeStart>%s</ChapterTimeStart>\n", formatChapterTime(p.ms))
		b.WriteString("      <ChapterDisplay>\n")
		fmt.Fprintf(&b, "        <ChapterString>%s</ChapterString>\n", escapeXML(p.label))
		b.WriteString("        <ChapterLanguage>und</ChapterLanguage>\n")
		b.WriteString("      </ChapterDisplay>\n")
		b.WriteString("    </ChapterAtom>\n")
	}
	b.WriteString("  </EditionEntry>\n")
	b.WriteString("</Chapters>\n")
	return b.String()
}

// formatChapterTime renders milliseconds as Matroska's HH:MM:SS.nnnnnnnnn.
func formatChapterTime(ms float64) string {
	if ms < 0 {
		ms = 0
	}
	totalS := ms / 1000.0
	h := int(totalS / 3600)
	m := int(totalS/60) % 60
	s := totalS - float64(h*3600) - float64(m*60)
	return fmt.Sprintf("%02d:%02d:%012.9f", h, m, s)
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
