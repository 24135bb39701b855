package emit

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

func sampleDisc() *model.DiscAnalysis {
	pl := &model.Playlist{
		Filename: "00001.mpls",
		PlayItems: []*model.PlayItem{
			{ClipID: "00001", InTime: 0, OutTime: 45 * 1000, Label: model.LabelBody,
				Streams: []model.StreamDescriptor{{PID: 0x1011, CodecName: "H.264/AVC", Language: "eng"}}},
		},
		Marks: []*model.ChapterMark{{ID: 0, MarkType: model.ChapterMarkEntryPoint, PlayItemRef: 0, Timestamp: 0, DurationMS: 0}},
	}
	return &model.DiscAnalysis{
		BDMVPath:  "/discs/show",
		Playlists: map[string]*model.Playlist{"00001.mpls": pl},
		Episodes: []*model.Episode{
			{Ordinal: 1, PlaylistName: "00001.mpls", DurationMS: 1000, Confidence: 0.9,
				Segments: []model.SegmentRef{{Key: "00001:0:1000", ClipID: "00001", InMS: 0, OutMS: 1000, DurationMS: 1000, Label: model.LabelBody}}},
		},
		Specials: []*model.SpecialFeature{
			{Index: 1, Playlist: "00002.mpls", DurationMS: 500, Category: model.CategoryExtra},
		},
		Warnings: []*model.Warning{
			{Code: model.WarningPlayAllOnly, Message: "episodes derived from play-all decomposition", Context: map[string]any{"playlist": "00002.mpls"}},
		},
		Classifications: map[string]model.Category{"00001.mpls": model.CategoryEpisode},
		PlayAll:         map[string]bool{"00002.mpls": true},
		DuplicateGroups: [][]string{{"00003.mpls", "00004.mpls"}},
		Hints: &model.DiscHints{
			Index:          &model.IndexBdmv{},
			TitlePlaylists: map[int]string{1: "00001.mpls"},
		},
	}
}

func TestBuildDocumentSchemaVersion(t *testing.T) {
	is := is.New(t)
	doc := BuildDocument(sampleDisc(), "2026-07-29T00:00:00Z")
	is.Equal(doc.SchemaVersion, "bdpl.disc.v1")
	is.Equal(doc.Disc.Path, "/discs/show")
	is.Equal(doc.Disc.GeneratedAt, "2026-07-29T00:00:00Z")
}

func TestBuildDocumentPlaylistsAndEpisodes(t *testing.T) {
	is := is.New(t)
	doc := BuildDocument(sampleDisc(), "")

	is.Equal(len(doc.Playlists), 1)
	is.Equal(doc.Playlists[0].MPLS, "00001.mpls")
	is.Equal(len(doc.Playlists[0].PlayItems), 1)
	is.Equal(doc.Playlists[0].PlayItems[0].Streams[0].Lang, "eng")

	is.Equal(len(doc.Episodes), 1)
	is.Equal(doc.Episodes[0].Episode, 1)
	is.Equal(doc.Episodes[0].Segments[0].Key, "00001:0:1000")
}

func TestBuildDocumentAnalysisBlock(t *testing.T) {
	is := is.New(t)
	doc := BuildDocument(sampleDisc(), "")

	is.Equal(len(doc.Analysis.PlayAll), 1)
	is.Equal(doc.Analysis.PlayAll[0], "00002.mpls")
	is.Equal(len(doc.Analysis.DuplicateGroups), 1)
	is.True(doc.Analysis.DiscHints.HasIndex)
	is.Equal(doc.Analysis.DiscHints.TitlePlaylists["1"], "00001.mpls")
}

func TestMarshalIsValidJSONAndDeterministic(t *testing.T) {
	is := is.New(t)
	disc := sampleDisc()
	doc1 := BuildDocument(disc, "t")
	doc2 := BuildDocument(disc, "t")

	b1, err := Marshal(doc1)
	is.NoErr(err)
	b2, err := Marshal(doc2)
	is.NoErr(err)
	is.Equal(string(b1), string(b2))

	var generic map[string]any
	is.NoErr(json.Unmarshal(b1, &generic))
	is.Equal(generic["schema_version"], "bdpl.disc.v1")
}

func TestBuildDocumentSpecialFeatureOmitsNilChapterStart(t *testing.T) {
	is := is.New(t)
	doc := BuildDocument(sampleDisc(), "")
	b, err := Marshal(doc)
	is.NoErr(err)
	is.True(!contains(string(b), `"chapter_start"`))
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
