// Package emit builds the JSON analysis document described in spec §6: a
// stable schema_version, a disc identity block, the playlist/episode/
// special-feature/warning arrays, and an open analysis object carrying the
// classification map, Play-All set, duplicate clusters, and disc hints.
//
// Grounded on bdpl/export/json_out.py's analysis_to_dict/export_json: the
// same flat-dict-of-dicts shape, copied from the in-memory model into a
// dedicated tree of output structs (the domain types carry no json tags)
// that encoding/json encodes in field-declaration order, so field order and
// presence match byte-for-byte across runs (spec §5 determinism). Unlike
// the original, GeneratedAt is accepted as a caller-supplied string instead
// of being stamped with time.Now() inside the builder, so BuildDocument
// itself stays a pure function of its inputs.
package emit

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// SchemaVersion is the stable schema string every emitted document carries.
const SchemaVersion = "bdpl.disc.v1"

type streamOut struct {
	PID  uint16 `json:"pid"`
	Lang string `json:"lang"`
	Name string `json:"codec"`
}

type playItemOut struct {
	ClipID     string      `json:"clip_id"`
	InTime     uint32      `json:"in_time"`
	OutTime    uint32      `json:"out_time"`
	DurationMS int         `json:"duration_ms"`
	Label      model.Label `json:"label"`
	SegmentKey []any       `json:"segment_key"`
	Streams    []streamOut `json:"streams"`
}

type chapterOut struct {
	MarkID      int `json:"mark_id"`
	MarkType    int `json:"mark_type"`
	PlayItemRef int `json:"play_item_ref"`
	Timestamp   int `json:"timestamp"`
	DurationMS  int `json:"duration_ms"`
}

type playlistOut struct {
	MPLS       string        `json:"mpls"`
	DurationMS int           `json:"duration_ms"`
	PlayItems  []playItemOut `json:"play_items"`
	Chapters   []chapterOut  `json:"chapters"`
	Streams    []streamOut   `json:"streams"`
}

type segmentOut struct {
	Key        string      `json:"key"`
	ClipID     string      `json:"clip_id"`
	InMS       int         `json:"in_ms"`
	OutMS      int         `json:"out_ms"`
	DurationMS int         `json:"duration_ms"`
	Label      model.Label `json:"label"`
}

type episodeOut struct {
	Episode    int          `json:"episode"`
	Playlist   string       `json:"playlist"`
	DurationMS int          `json:"duration_ms"`
	Confidence float64      `json:"confidence"`
	Segments   []segmentOut `json:"segments"`
}

type warningOut struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context"`
}

type specialFeatureOut struct {
	Index        int            `json:"index"`
	Playlist     string         `json:"playlist"`
	DurationMS   int            `json:"duration_ms"`
	Category     model.Category `json:"category"`
	ChapterStart *int           `json:"chapter_start,omitempty"`
}

type discOut struct {
	Path        string `json:"path"`
	GeneratedAt string `json:"generated_at"`
}

// discHintsOut mirrors model.DiscHints, trimmed to the JSON-relevant
// summary fields (the full IndexBdmv/MovieObject trees are parse-time
// detail, not analysis output).
type discHintsOut struct {
	HasIndex        bool           `json:"has_index"`
	HasMovieObjects bool           `json:"has_movie_objects"`
	TitlePlaylists  map[string]string `json:"title_playlists,omitempty"`
	IGButtonCount   int            `json:"ig_button_count"`
	IGRegister2     []int          `json:"ig_register2_writes,omitempty"`
}

type analysisOut struct {
	Classifications map[string]model.Category `json:"classifications"`
	PlayAll         []string                  `json:"play_all"`
	DuplicateGroups [][]string                `json:"duplicate_groups"`
	DiscHints       discHintsOut              `json:"disc_hints"`
}

// Document is the full emitted JSON tree, per spec §6.
type Document struct {
	SchemaVersion   string              `json:"schema_version"`
	Disc            discOut             `json:"disc"`
	Playlists       []playlistOut       `json:"playlists"`
	Episodes        []episodeOut        `json:"episodes"`
	SpecialFeatures []specialFeatureOut `json:"special_features"`
	Warnings        []warningOut        `json:"warnings"`
	Analysis        analysisOut         `json:"analysis"`
}

// BuildDocument converts a frozen DiscAnalysis into the JSON document tree.
// generatedAt is opaque to this function — pass a fixed or caller-stamped
// value to keep output byte-identical across runs over the same disc.
func BuildDocument(disc *model.DiscAnalysis, generatedAt string) *Document {
	return &Document{
		SchemaVersion:   SchemaVersion,
		Disc:            discOut{Path: disc.BDMVPath, GeneratedAt: generatedAt},
		Playlists:       buildPlaylists(disc),
		Episodes:        buildEpisodes(disc.Episodes),
		SpecialFeatures: buildSpecials(disc.Specials),
		Warnings:        buildWarnings(disc.Warnings),
		Analysis:        buildAnalysis(disc),
	}
}

// Marshal renders the document as indented JSON, per spec's "stable schema
// string" contract.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func sortedPlaylistNames(playlists map[string]*model.Playlist) []string {
	names := make([]string, 0, len(playlists))
	for name := range playlists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildPlaylists(disc *model.DiscAnalysis) []playlistOut {
	var out []playlistOut
	for _, name := range sortedPlaylistNames(disc.Playlists) {
		pl := disc.Playlists[name]
		var items []playItemOut
		var allStreams []streamOut
		for _, pi := range pl.PlayItems {
			streams := buildStreams(pi.Streams)
			allStreams = append(allStreams, streams...)
			items = append(items, playItemOut{
				ClipID:     pi.ClipID,
				InTime:     pi.InTime,
				OutTime:    pi.OutTime,
				DurationMS: pi.DurationMS(),
				Label:      pi.Label,
				SegmentKey: []any{pi.ClipID, pi.InMS(), pi.OutMS()},
				Streams:    streams,
			})
		}
		var chapters []chapterOut
		for _, mk := range pl.Marks {
			chapters = append(chapters, chapterOut{
				MarkID:      mk.ID,
				MarkType:    int(mk.MarkType),
				PlayItemRef: mk.PlayItemRef,
				Timestamp:   int(mk.Timestamp),
				DurationMS:  mk.DurationMS,
			})
		}
		out = append(out, playlistOut{
			MPLS:       name,
			DurationMS: pl.DurationMS(),
			PlayItems:  items,
			Chapters:   chapters,
			Streams:    allStreams,
		})
	}
	return out
}

func buildStreams(streams []model.StreamDescriptor) []streamOut {
	out := make([]streamOut, 0, len(streams))
	for _, s := range streams {
		out = append(out, streamOut{PID: s.PID, Lang: s.Language, Name: s.CodecName})
	}
	return out
}

func buildEpisodes(episodes []*model.Episode) []episodeOut {
	var out []episodeOut
	for _, ep := range episodes {
		var segs []segmentOut
		for _, seg := range ep.Segments {
			segs = append(segs, segmentOut{
				Key:        seg.Key,
				ClipID:     seg.ClipID,
				InMS:       seg.InMS,
				OutMS:      seg.OutMS,
				DurationMS: seg.DurationMS,
				Label:      seg.Label,
			})
		}
		out = append(out, episodeOut{
			Episode:    ep.Ordinal,
			Playlist:   ep.PlaylistName,
			DurationMS: ep.DurationMS,
			Confidence: ep.Confidence,
			Segments:   segs,
		})
	}
	return out
}

func buildSpecials(specials []*model.SpecialFeature) []specialFeatureOut {
	var out []specialFeatureOut
	for _, sf := range specials {
		out = append(out, specialFeatureOut{
			Index:        sf.Index,
			Playlist:     sf.Playlist,
			DurationMS:   sf.DurationMS,
			Category:     sf.Category,
			ChapterStart: sf.ChapterStart,
		})
	}
	return out
}

func buildWarnings(warnings []*model.Warning) []warningOut {
	var out []warningOut
	for _, w := range warnings {
		out = append(out, warningOut{Code: w.Code, Message: w.Message, Context: w.Context})
	}
	return out
}

func buildAnalysis(disc *model.DiscAnalysis) analysisOut {
	var playAll []string
	for name, is := range disc.PlayAll {
		if is {
			playAll = append(playAll, name)
		}
	}
	sort.Strings(playAll)

	dups := make([][]string, len(disc.DuplicateGroups))
	copy(dups, disc.DuplicateGroups)

	hints := discHintsOut{}
	if disc.Hints != nil {
		hints.HasIndex = disc.Hints.Index != nil
		hints.HasMovieObjects = disc.Hints.MovieObjects != nil
		hints.IGButtonCount = len(disc.Hints.IGHints)
		hints.IGRegister2 = disc.Hints.IGChapterRegisterWrites
		if len(disc.Hints.TitlePlaylists) > 0 {
			hints.TitlePlaylists = map[string]string{}
			for title, pl := range disc.Hints.TitlePlaylists {
				hints.TitlePlaylists[strconv.Itoa(title)] = pl
			}
		}
	}

	return analysisOut{
		Classifications: disc.Classifications,
		PlayAll:         playAll,
		DuplicateGroups: dups,
		DiscHints:       hints,
	}
}
