package analysis

import (
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

func TestReconstructScenesFallsBackToChapterMarksWithoutIGHints(t *testing.T) {
	is := is.New(t)

	pl := &model.Playlist{
		Filename:  "00001.mpls",
		PlayItems: []*model.PlayItem{mkPlayItem("00001", 0, 20*60*1000)},
		Marks: []*model.ChapterMark{
			{ID: 0, MarkType: model.ChapterMarkEntryPoint, PlayItemRef: 0, Timestamp: 0},
			{ID: 1, MarkType: model.ChapterMarkEntryPoint, PlayItemRef: 0, Timestamp: uint32(5 * 60 * 1000 * 45)},
			{ID: 2, MarkType: model.ChapterMarkEntryPoint, PlayItemRef: 0, Timestamp: uint32(10 * 60 * 1000 * 45)},
		},
	}
	playlists := map[string]*model.Playlist{"00001.mpls": pl}
	ep := &model.Episode{
		Ordinal: 1, PlaylistName: "00001.mpls", DurationMS: 20 * 60 * 1000,
		Segments: []model.SegmentRef{{ClipID: "00001"}},
	}
	disc := &model.DiscAnalysis{}

	ReconstructScenes(disc, []*model.Episode{ep}, playlists)

	is.True(len(ep.Scenes) > 0)
	is.Equal(ep.Scenes[0].InMS, 0)
	is.Equal(ep.Scenes[len(ep.Scenes)-1].OutMS, 20*60*1000)
	for _, s := range ep.Scenes {
		is.Equal(s.ClipID, "00001")
	}
}

func TestReconstructScenesCapsAtFourAnchors(t *testing.T) {
	is := is.New(t)

	marks := make([]*model.ChapterMark, 0, 8)
	for i := 0; i < 8; i++ {
		marks = append(marks, &model.ChapterMark{
			ID: i, MarkType: model.ChapterMarkEntryPoint, PlayItemRef: 0,
			Timestamp: uint32(i * 60 * 1000 * 45),
		})
	}
	pl := &model.Playlist{
		Filename:  "00002.mpls",
		PlayItems: []*model.PlayItem{mkPlayItem("00002", 0, 8*60*1000)},
		Marks:     marks,
	}
	playlists := map[string]*model.Playlist{"00002.mpls": pl}
	ep := &model.Episode{
		Ordinal: 1, PlaylistName: "00002.mpls", DurationMS: 8 * 60 * 1000,
		Segments: []model.SegmentRef{{ClipID: "00002"}},
	}
	disc := &model.DiscAnalysis{}

	ReconstructScenes(disc, []*model.Episode{ep}, playlists)
	is.True(len(ep.Scenes) <= sceneMaxAnchors)
}

func TestReconstructScenesNoChapterDataYieldsSingleSpanningScene(t *testing.T) {
	is := is.New(t)

	pl := &model.Playlist{
		Filename:  "00003.mpls",
		PlayItems: []*model.PlayItem{mkPlayItem("00003", 0, 3*60*1000)},
	}
	playlists := map[string]*model.Playlist{"00003.mpls": pl}
	ep := &model.Episode{
		Ordinal: 1, PlaylistName: "00003.mpls", DurationMS: 3 * 60 * 1000,
		Segments: []model.SegmentRef{{ClipID: "00003"}},
	}
	disc := &model.DiscAnalysis{}

	ReconstructScenes(disc, []*model.Episode{ep}, playlists)
	is.Equal(len(ep.Scenes), 1)
	is.Equal(ep.Scenes[0].InMS, 0)
	is.Equal(ep.Scenes[0].OutMS, 3*60*1000)
}

func TestDownsampleAnchorsFabricatesLeadingZeroWhenFirstAnchorIsLate(t *testing.T) {
	is := is.New(t)
	out := downsampleAnchors([]int{1000, 2000, 3000})
	is.Equal(out[0], 0)
}

func TestSanitizeAnchorsTrimsCreditsWhenFourOrMorePrecedeCutoff(t *testing.T) {
	is := is.New(t)
	durationMS := 200 * 1000
	anchors := []int{1000, 2000, 3000, 4000, durationMS - 1000}
	clean := sanitizeAnchors(anchors, durationMS)
	is.Equal(len(clean), 4)
	for _, a := range clean {
		is.True(a < durationMS-sceneCreditsTrimMS)
	}
}
