package analysis

import (
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

func TestExtractSpecialFeaturesFallbackSkipsEpisodesAndPlayAll(t *testing.T) {
	is := is.New(t)

	playlists := map[string]*model.Playlist{
		"00001.mpls": {Filename: "00001.mpls", PlayItems: []*model.PlayItem{mkPlayItem("00001", 0, 20*60*1000)}},
		"00002.mpls": {Filename: "00002.mpls", PlayItems: []*model.PlayItem{mkPlayItem("00002", 0, 2*60*1000)}},
		"00003.mpls": {Filename: "00003.mpls", PlayItems: []*model.PlayItem{mkPlayItem("00003", 0, 40*60*1000)}},
	}
	disc := &model.DiscAnalysis{
		Classifications: map[string]model.Category{
			"00001.mpls": model.CategoryEpisode,
			"00002.mpls": model.CategoryExtra,
			"00003.mpls": model.CategoryPlayAll,
		},
	}

	features := ExtractSpecialFeatures(disc, playlists)
	is.Equal(len(features), 1)
	is.Equal(features[0].Playlist, "00002.mpls")
	is.Equal(features[0].Category, model.CategoryExtra)
}

func TestExtractSpecialFeaturesIGHintDrivenDuration(t *testing.T) {
	is := is.New(t)

	extra := &model.Playlist{
		Filename: "00010.mpls",
		PlayItems: []*model.PlayItem{
			mkPlayItem("00010", 0, 10*60*1000),
		},
		Marks: []*model.ChapterMark{
			{ID: 0, MarkType: model.ChapterMarkEntryPoint, PlayItemRef: 0, Timestamp: 0},
			{ID: 1, MarkType: model.ChapterMarkEntryPoint, PlayItemRef: 0, Timestamp: uint32(5 * 60 * 1000 * 45)},
		},
	}
	playlists := map[string]*model.Playlist{"00010.mpls": extra}

	jumpTitle := 2
	disc := &model.DiscAnalysis{
		Classifications: map[string]model.Category{"00010.mpls": model.CategoryExtra},
		Hints: &model.DiscHints{
			TitlePlaylists: map[int]string{2: "00010.mpls"},
			IGHints: []*model.IGButtonHint{
				{PageID: 0, ButtonID: 0, JumpTitle: &jumpTitle, Registers: map[int]uint32{2: 0}},
				{PageID: 0, ButtonID: 1, JumpTitle: &jumpTitle, Registers: map[int]uint32{2: 1}},
			},
		},
	}

	features := ExtractSpecialFeatures(disc, playlists)
	is.Equal(len(features), 2)
	is.Equal(features[0].DurationMS, 5*60*1000)
	is.True(features[0].ChapterStart != nil && *features[0].ChapterStart == 0)
	is.Equal(features[1].DurationMS, 5*60*1000)
}

func TestApplyMenuVisibilityWithoutIGEvidenceFallsBackToHeuristic(t *testing.T) {
	is := is.New(t)

	playlists := map[string]*model.Playlist{
		"00002.mpls": {Filename: "00002.mpls", PlayItems: []*model.PlayItem{mkPlayItem("00002", 0, 20*1000)}},
	}
	disc := &model.DiscAnalysis{
		Classifications: map[string]model.Category{"00002.mpls": model.CategoryExtra},
	}
	features := ExtractSpecialFeatures(disc, playlists)
	is.Equal(len(features), 1)
	is.True(features[0].MenuVisible)
}

func TestPlaylistNumberParsesStemOrReturnsNegativeOne(t *testing.T) {
	is := is.New(t)
	is.Equal(playlistNumber("00002.mpls"), 2)
	is.Equal(playlistNumber("not-a-number.mpls"), -1)
}
