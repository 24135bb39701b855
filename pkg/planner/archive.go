package planner

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kanzaki-rei/bdpl-go/pkg/bdlerr"
	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// ArchiveItem is one extractable still-frame entry from a digital-archive
// playlist.
type ArchiveItem struct {
	Playlist string
	Index    int
	ClipID   string
	InMS     int
}

// ArchivePlan is one planned ffmpeg invocation.
type ArchivePlan struct {
	Item       ArchiveItem
	Args       []string
	OutputPath string
}

// NormalizeImageFormat validates and normalizes a requested image format
// per spec §4.4.3: jpg/jpeg/png, with jpeg folded to jpg.
func NormalizeImageFormat(format string) (string, error) {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "jpg", nil
	case "png":
		return "png", nil
	default:
		return "", fmt.Errorf("image format must be one of jpg, jpeg, png, got %q", format)
	}
}

// CollectArchiveItems returns every play item of every digital-archive
// playlist, in deterministic (playlist name, item index) order.
//
// Grounded on bdpl/export/digital_archive.py's collect_archive_items.
func CollectArchiveItems(disc *model.DiscAnalysis) []ArchiveItem {
	var names []string
	for name, cat := range disc.Classifications {
		if cat == model.CategoryDigitalArchive {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var items []ArchiveItem
	for _, name := range names {
		pl := disc.Playlists[name]
		if pl == nil {
			continue
		}
		for idx, pi := range pl.PlayItems {
			items = append(items, ArchiveItem{
				Playlist: name,
				Index:    idx + 1,
				ClipID:   pi.ClipID,
				InMS:     pi.InMS(),
			})
		}
	}
	return items
}

// ArchiveOutputName builds the deterministic output filename for one
// archive item: "<playlist-stem>-<index:03d>-<clip-id>.<format>".
func ArchiveOutputName(item ArchiveItem, format string) string {
	stem := strings.TrimSuffix(item.Playlist, filepath.Ext(item.Playlist))
	return fmt.Sprintf("%s-%03d-%s.%s", stem, item.Index, item.ClipID, format)
}

// ResolveArchiveOutputPath joins outDir with the item's output name and
// rejects any result that escapes outDir, per spec §4.4.3's path-traversal
// guard. Both paths are cleaned/made absolute before comparison so a clip
// id or playlist name containing ".." cannot walk out of the target
// directory.
func ResolveArchiveOutputPath(outDir string, item ArchiveItem, format string) (string, error) {
	if strings.Contains(item.ClipID, "..") || strings.ContainsAny(item.ClipID, "/\\") {
		return "", bdlerr.PathTraversal(fmt.Sprintf("clip id is not a bare path segment: %q", item.ClipID), nil)
	}

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", bdlerr.PathTraversal("resolving archive output directory", err)
	}
	name := ArchiveOutputName(item, format)
	candidate := filepath.Join(absOut, name)
	absCandidate, err := filepath.Abs(candidate)
	if err != nil {
		return "", bdlerr.PathTraversal("resolving archive output path", err)
	}
	rel, err := filepath.Rel(absOut, absCandidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", bdlerr.PathTraversal(fmt.Sprintf("output path escapes target directory: %s", candidate), nil)
	}
	return absCandidate, nil
}

// BuildArchivePlan builds the ffmpeg argument vector for one archive item,
// per spec §4.4.3.
//
// Grounded on bdpl/export/digital_archive.py's _build_ffmpeg_cmd.
func BuildArchivePlan(item ArchiveItem, ffmpegPath, streamDir, outDir, format string) (*ArchivePlan, error) {
	format, err := NormalizeImageFormat(format)
	if err != nil {
		return nil, err
	}
	outputPath, err := ResolveArchiveOutputPath(outDir, item, format)
	if err != nil {
		return nil, err
	}
	source := filepath.Join(streamDir, item.ClipID+".m2ts")
	seconds := float64(item.InMS) / 1000.0
	if seconds < 0 {
		seconds = 0
	}

	args := []string{
		ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-ss", fmt.Sprintf("%.3f", seconds),
		"-i", source,
		"-frames:v", "1",
	}
	if format == "jpg" {
		args = append(args, "-q:v", "2")
	}
	args = append(args, outputPath)

	return &ArchivePlan{Item: item, Args: args, OutputPath: outputPath}, nil
}

// BuildArchivePlans builds one plan per digital-archive item on the disc.
func BuildArchivePlans(disc *model.DiscAnalysis, ffmpegPath, streamDir, outDir, format string) ([]*ArchivePlan, error) {
	var plans []*ArchivePlan
	for _, item := range CollectArchiveItems(disc) {
		plan, err := BuildArchivePlan(item, ffmpegPath, streamDir, outDir, format)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
