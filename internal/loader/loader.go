// Package loader reads a BDMV directory tree off disk and assembles a
// model.DiscAnalysis skeleton (playlists, clips, navigation hints) ready to
// hand to internal/analysis.Analyze.
//
// Grounded on bdpl/cli.py's _parse_and_analyze (directory walk shape) and
// bdpl/analyze/__init__.py's _parse_disc_hints (index.bdmv + MovieObject.bdmv
// combination into a title->playlist map).
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kanzaki-rei/bdpl-go/pkg/bdlerr"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdlog"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdmv"
	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// Load walks bdmvPath (the directory that directly contains PLAYLIST/, not
// its parent) and returns a DiscAnalysis with Playlists, Clips, and Hints
// populated. Episodes/Specials/Classifications/etc are left for the caller
// to fill in via internal/analysis.Analyze.
//
// PLAYLIST/ is required: a disc with no playlists has nothing to analyze.
// Every other input (CLIPINF/, index.bdmv, MovieObject.bdmv, the IG stream)
// is optional and degrades with a logged Debug call on failure, per spec §7.
func Load(bdmvPath string, log bdlog.Logger) (*model.DiscAnalysis, error) {
	playlistDir := filepath.Join(bdmvPath, "PLAYLIST")
	if fi, err := os.Stat(playlistDir); err != nil || !fi.IsDir() {
		return nil, bdlerr.IoRead("PLAYLIST directory not found under "+bdmvPath, err)
	}

	playlists, err := loadPlaylists(playlistDir, log)
	if err != nil {
		return nil, err
	}

	clips := loadClips(filepath.Join(bdmvPath, "CLIPINF"), log)

	hints := loadHints(bdmvPath, log)

	return &model.DiscAnalysis{
		BDMVPath:        bdmvPath,
		Playlists:       playlists,
		Clips:           clips,
		Classifications: map[string]model.Category{},
		PlayAll:         map[string]bool{},
		SegmentFreq:     map[string]*model.FrequencyStats{},
		Hints:           hints,
	}, nil
}

func loadPlaylists(playlistDir string, log bdlog.Logger) (map[string]*model.Playlist, error) {
	entries, err := os.ReadDir(playlistDir)
	if err != nil {
		return nil, bdlerr.IoRead("reading PLAYLIST directory", err)
	}

	out := map[string]*model.Playlist{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".mpls") {
			continue
		}
		buf, err := os.ReadFile(filepath.Join(playlistDir, name))
		if err != nil {
			log.Debug("io_read", "skipping "+name+": "+err.Error())
			continue
		}
		pl, err := bdmv.ParseMPLS(buf, name, log)
		if err != nil {
			log.Debug("format_error", "skipping "+name+": "+err.Error())
			continue
		}
		out[name] = pl
	}
	return out, nil
}

func loadClips(clipinfDir string, log bdlog.Logger) map[string]*model.ClipInfo {
	out := map[string]*model.ClipInfo{}
	entries, err := os.ReadDir(clipinfDir)
	if err != nil {
		log.Debug("io_read", "no CLIPINF directory: "+err.Error())
		return out
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".clpi") {
			continue
		}
		clipID := strings.TrimSuffix(name, filepath.Ext(name))
		buf, err := os.ReadFile(filepath.Join(clipinfDir, name))
		if err != nil {
			log.Debug("io_read", "skipping "+name+": "+err.Error())
			continue
		}
		ci, err := bdmv.ParseCLPI(buf, clipID)
		if err != nil {
			log.Debug("format_error", "skipping "+name+": "+err.Error())
			continue
		}
		out[clipID] = ci
	}
	return out
}

// loadHints parses index.bdmv and MovieObject.bdmv (both optional) and, when
// both are present, combines them into the title->playlist map; it then
// demuxes the IG stream from one STREAM/*.m2ts file (also optional).
func loadHints(bdmvPath string, log bdlog.Logger) *model.DiscHints {
	hints := &model.DiscHints{}

	idx := loadIndex(bdmvPath, log)
	hints.Index = idx

	mobjs := loadMovieObjects(bdmvPath, log)
	if mobjs != nil {
		byID := map[int]*model.MovieObject{}
		for _, o := range mobjs {
			byID[o.ID] = o
		}
		hints.MovieObjects = byID
	}

	if idx != nil && mobjs != nil {
		hints.TitlePlaylists = buildTitlePlaylists(idx, hints.MovieObjects)
	}

	igHints := loadIGHints(bdmvPath, log)
	hints.IGHints = igHints
	hints.IGChapterRegisterWrites = collectRegister2Writes(igHints)

	return hints
}

func loadIndex(bdmvPath string, log bdlog.Logger) *model.IndexBdmv {
	buf, err := os.ReadFile(filepath.Join(bdmvPath, "index.bdmv"))
	if err != nil {
		log.Debug("io_read", "no index.bdmv: "+err.Error())
		return nil
	}
	idx, err := bdmv.ParseIndex(buf, log)
	if err != nil {
		log.Debug("format_error", "failed to parse index.bdmv: "+err.Error())
		return nil
	}
	return idx
}

func loadMovieObjects(bdmvPath string, log bdlog.Logger) []*model.MovieObject {
	buf, err := os.ReadFile(filepath.Join(bdmvPath, "MovieObject.bdmv"))
	if err != nil {
		log.Debug("io_read", "no MovieObject.bdmv: "+err.Error())
		return nil
	}
	objs, err := bdmv.ParseMovieObjects(buf, log)
	if err != nil {
		log.Debug("format_error", "failed to parse MovieObject.bdmv: "+err.Error())
		return nil
	}
	return objs
}

// buildTitlePlaylists mirrors _parse_disc_hints's title -> object ->
// playlist resolution. index.bdmv's title numbers are stored 0-based
// (IndexTitle.TitleNumber); the 1-based convention used by JumpTitle
// commands and the rest of this system numbers title N as TitleNumber+1.
func buildTitlePlaylists(idx *model.IndexBdmv, movieObjects map[int]*model.MovieObject) map[int]string {
	out := map[int]string{}
	for _, t := range idx.Titles {
		if t.ObjectType != model.IndexObjectHDMV {
			continue
		}
		obj, ok := movieObjects[t.MovieObjectID]
		if !ok {
			continue
		}
		playlists := bdmv.ReferencedPlaylists(obj)
		if len(playlists) == 0 {
			continue
		}
		out[t.TitleNumber+1] = playlistFilename(playlists[0])
	}
	return out
}

func playlistFilename(n uint32) string {
	return fmt.Sprintf("%05d.mpls", n)
}

// loadIGHints demuxes the IG menu stream from the first STREAM/*.m2ts file
// (sorted by filename) that actually yields an Interactive Composition
// Segment. Most BDMV structures keep one shared menu stream; scanning in
// filename order gives a deterministic pick when more than one qualifies.
func loadIGHints(bdmvPath string, log bdlog.Logger) []*model.IGButtonHint {
	streamDir := filepath.Join(bdmvPath, "STREAM")
	entries, err := os.ReadDir(streamDir)
	if err != nil {
		log.Debug("io_read", "no STREAM directory: "+err.Error())
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".m2ts") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		hints := loadIGHintsFromFile(filepath.Join(streamDir, name), name, log)
		if len(hints) > 0 {
			return hints
		}
	}
	return nil
}

// loadIGHintsFromFile streams one m2ts file's IG packets (never buffering
// the whole, potentially multi-GB, file into one allocation — spec §5) and
// returns any menu button hints its ICS segment yields.
func loadIGHintsFromFile(path, name string, log bdlog.Logger) []*model.IGButtonHint {
	f, err := os.Open(path)
	if err != nil {
		log.Debug("io_read", "skipping "+name+": "+err.Error())
		return nil
	}
	defer f.Close()

	ics, err := bdmv.ParseIGFromM2TS(f, nil)
	if err != nil {
		log.Debug("format_error", "IG parse failed for "+name+": "+err.Error())
		return nil
	}
	if ics == nil {
		return nil
	}
	return bdmv.ExtractMenuHints(ics)
}

func collectRegister2Writes(hints []*model.IGButtonHint) []int {
	seen := map[int]bool{}
	for _, h := range hints {
		if v, ok := h.Registers[2]; ok {
			seen[int(v)] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
