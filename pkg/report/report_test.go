package report

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

func sampleDisc() *model.DiscAnalysis {
	pl := &model.Playlist{
		Filename: "00001.mpls",
		PlayItems: []*model.PlayItem{
			{ClipID: "00007", InTime: 0, OutTime: 45 * 1500, Label: model.LabelBody},
		},
	}
	return &model.DiscAnalysis{
		BDMVPath:        "/discs/show",
		Playlists:       map[string]*model.Playlist{"00001.mpls": pl},
		Classifications: map[string]model.Category{"00001.mpls": model.CategoryEpisode},
		Episodes: []*model.Episode{
			{Ordinal: 1, PlaylistName: "00001.mpls", DurationMS: 1500000, Confidence: 0.9,
				Segments: []model.SegmentRef{{ClipID: "00007"}}},
		},
		Warnings: []*model.Warning{{Code: model.WarningPlayAllOnly, Message: "derived from play-all"}},
	}
}

func TestFormatDuration(t *testing.T) {
	is := is.New(t)
	is.Equal(FormatDuration(65000), "01:05")
	is.Equal(FormatDuration(3725000), "01:02:05")
}

func TestTextIncludesAllSections(t *testing.T) {
	is := is.New(t)
	text := Text(sampleDisc())
	is.True(strings.Contains(text, "Disc Summary"))
	is.True(strings.Contains(text, "00001.mpls"))
	is.True(strings.Contains(text, "episode"))
	is.True(strings.Contains(text, "Ep  1"))
	is.True(strings.Contains(text, "PLAY_ALL_ONLY"))
}

func TestPlaylistDetailNotFound(t *testing.T) {
	is := is.New(t)
	_, ok := PlaylistDetail(sampleDisc(), "99999.mpls")
	is.True(!ok)
}

func TestResolvePlaylistNameAcceptsBareAndFull(t *testing.T) {
	is := is.New(t)
	disc := sampleDisc()

	name, ok := ResolvePlaylistName(disc, "00001")
	is.True(ok)
	is.Equal(name, "00001.mpls")

	name, ok = ResolvePlaylistName(disc, "00001.mpls")
	is.True(ok)
	is.Equal(name, "00001.mpls")

	_, ok = ResolvePlaylistName(disc, "99999")
	is.True(!ok)
}
