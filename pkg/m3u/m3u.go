// Package m3u builds the debug M3U playlist described in spec §6: one file
// per episode, each segment referencing its backing M2TS with VLC-relative
// seek options.
//
// Grounded on mogiioin-hls-m3u8/m3u8/writer.go's bytes.Buffer + WriteString
// line-builder idiom and bdpl/export/m3u.py's field/VLC-option shape.
package m3u

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// Build renders one episode's M3U document. streamDir and outDir are used
// only to compute the path written after each #EXTINF block, relative to
// where the .m3u file itself will live.
//
// Grounded on bdpl/export/m3u.py's export_m3u.
func Build(ep *model.Episode, playlists map[string]*model.Playlist, streamDir, outDir string) (string, error) {
	base := clipPTSBaseMS(playlists)

	var buf bytes.Buffer
	buf.WriteString("#EXTM3U\n")

	for _, seg := range ep.Segments {
		durS := float64(seg.DurationMS) / 1000.0
		m2ts := filepath.Join(streamDir, seg.ClipID+".m2ts")
		rel, err := filepath.Rel(outDir, m2ts)
		if err != nil {
			return "", err
		}

		baseMS, ok := base[seg.ClipID]
		if !ok {
			baseMS = seg.InMS
		}
		startS := float64(seg.InMS-baseMS) / 1000.0
		stopS := startS + durS

		fmt.Fprintf(&buf, "#EXTINF:%.3f,%s (%s)\n", durS, seg.ClipID, seg.Label)
		if startS > 0.5 {
			fmt.Fprintf(&buf, "#EXTVLCOPT:start-time=%.3f\n", startS)
		}
		if stopS > startS {
			fmt.Fprintf(&buf, "#EXTVLCOPT:stop-time=%.3f\n", stopS)
		}
		buf.WriteString(rel + "\n")
	}

	return buf.String(), nil
}

// Filename returns the deterministic output filename for one episode's M3U
// document: "Episode_NN.m3u".
func Filename(ep *model.Episode) string {
	return fmt.Sprintf("Episode_%02d.m3u", ep.Ordinal)
}

// clipPTSBaseMS returns, per clip id, the smallest play-item in-time (ms)
// across every playlist referencing that clip. VLC normalizes an m2ts's PTS
// to start at zero, so this base must be subtracted to get a VLC-relative
// seek position.
func clipPTSBaseMS(playlists map[string]*model.Playlist) map[string]int {
	var names []string
	for name := range playlists {
		names = append(names, name)
	}
	sort.Strings(names)

	base := map[string]int{}
	for _, name := range names {
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
