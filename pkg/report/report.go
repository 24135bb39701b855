// Package report builds the plain-text disc summary the `explain`
// subcommand prints: a disc header, a playlist table with inferred
// categories, the episode list, and any warnings.
//
// Grounded on bdpl/export/text_report.py's text_report/format_duration: the
// same section layout and fixed-width column formatting, built with
// strings.Builder instead of a list-of-lines join.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

const ruleWidth = 60

func rule(ch byte) string {
	return strings.Repeat(string(ch), ruleWidth)
}

// FormatDuration renders milliseconds as HH:MM:SS (hours only when nonzero)
// or MM:SS.
func FormatDuration(ms int) string {
	totalS := ms / 1000
	h := totalS / 3600
	m := (totalS % 3600) / 60
	s := totalS % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Text builds the full plain-text disc summary.
//
// Grounded on bdpl/export/text_report.py's text_report.
func Text(disc *model.DiscAnalysis) string {
	var b strings.Builder

	clipIDs := map[string]bool{}
	names := playlistNames(disc)
	for _, name := range names {
		for _, pi := range disc.Playlists[name].PlayItems {
			clipIDs[pi.ClipID] = true
		}
	}

	b.WriteString(rule('=') + "\n")
	b.WriteString("Disc Summary\n")
	b.WriteString(rule('=') + "\n")
	fmt.Fprintf(&b, "  Path:       %s\n", disc.BDMVPath)
	fmt.Fprintf(&b, "  Playlists:  %d\n", len(names))
	fmt.Fprintf(&b, "  Clips:      %d\n", len(clipIDs))
	b.WriteString("\n")

	b.WriteString(rule('-') + "\n")
	b.WriteString("Playlists\n")
	b.WriteString(rule('-') + "\n")
	fmt.Fprintf(&b, "  %-16s %10s %6s  %s\n", "Name", "Duration", "Items", "Class")
	fmt.Fprintf(&b, "  %-16s %10s %6s  %s\n", "----", "--------", "-----", "-----")
	for _, name := range names {
		pl := disc.Playlists[name]
		cls := disc.Classifications[name]
		fmt.Fprintf(&b, "  %-16s %10s %6d  %s\n", name, FormatDuration(pl.DurationMS()), len(pl.PlayItems), cls)
	}
	b.WriteString("\n")

	if len(disc.Episodes) > 0 {
		b.WriteString(rule('-') + "\n")
		b.WriteString("Episodes\n")
		b.WriteString(rule('-') + "\n")
		for _, ep := range disc.Episodes {
			clips := make([]string, len(ep.Segments))
			for i, seg := range ep.Segments {
				clips[i] = seg.ClipID
			}
			fmt.Fprintf(&b, "  Ep %2d  %10s  conf=%.2f  clips=[%s]\n",
				ep.Ordinal, FormatDuration(ep.DurationMS), ep.Confidence, strings.Join(clips, ", "))
		}
		b.WriteString("\n")
	}

	if len(disc.Warnings) > 0 {
		b.WriteString(rule('-') + "\n")
		b.WriteString("Warnings\n")
		b.WriteString(rule('-') + "\n")
		for _, w := range disc.Warnings {
			fmt.Fprintf(&b, "  [%s] %s\n", w.Code, w.Message)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// PlaylistDetail builds the single-playlist detail view the `explain
// --playlist` flag prints.
//
// Grounded on bdpl/cli.py's explain command's per-playlist branch.
func PlaylistDetail(disc *model.DiscAnalysis, name string) (string, bool) {
	pl, ok := disc.Playlists[name]
	if !ok {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Playlist: %s\n", name)
	fmt.Fprintf(&b, "Duration: %d ms (%.1f s)\n", pl.DurationMS(), float64(pl.DurationMS())/1000.0)
	fmt.Fprintf(&b, "Items:    %d\n", len(pl.PlayItems))
	fmt.Fprintf(&b, "Chapters: %d\n", len(pl.Marks))
	cls, ok := disc.Classifications[name]
	if !ok {
		cls = "unknown"
	}
	fmt.Fprintf(&b, "Class:    %s\n", cls)
	b.WriteString("\n")
	for i, pi := range pl.PlayItems {
		fmt.Fprintf(&b, "  [%d] %s  %dms  [%s]\n", i, pi.ClipID, pi.DurationMS(), pi.Label)
	}
	return strings.TrimRight(b.String(), "\n"), true
}

// ResolvePlaylistName matches a bare clip-style argument ("00002") or a full
// filename ("00002.mpls") to a key in disc.Playlists.
func ResolvePlaylistName(disc *model.DiscAnalysis, arg string) (string, bool) {
	if _, ok := disc.Playlists[arg]; ok {
		return arg, true
	}
	withExt := arg + ".mpls"
	if _, ok := disc.Playlists[withExt]; ok {
		return withExt, true
	}
	return "", false
}

func playlistNames(disc *model.DiscAnalysis) []string {
	names := make([]string, 0, len(disc.Playlists))
	for name := range disc.Playlists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
