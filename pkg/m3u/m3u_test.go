package m3u

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

func TestBuildBasicEpisode(t *testing.T) {
	is := is.New(t)

	pl := &model.Playlist{
		Filename:  "00001.mpls",
		PlayItems: []*model.PlayItem{{ClipID: "00001", InTime: 0, OutTime: 45 * 90000}},
	}
	ep := &model.Episode{
		Ordinal:      1,
		PlaylistName: "00001.mpls",
		DurationMS:   90000,
		Segments:     []model.SegmentRef{{ClipID: "00001", InMS: 0, OutMS: 90000, DurationMS: 90000, Label: model.LabelBody}},
	}

	out, err := Build(ep, map[string]*model.Playlist{"00001.mpls": pl}, "/disc/STREAM", "/out")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "#EXTM3U\n"))
	is.True(strings.Contains(out, "#EXTINF:90.000,00001 (BODY)"))
	is.True(strings.Contains(out, "../disc/STREAM/00001.m2ts"))
	is.True(!strings.Contains(out, "start-time"))
}

func TestBuildEmitsVLCSeekOptionsForMidClipSegment(t *testing.T) {
	is := is.New(t)

	pl := &model.Playlist{
		Filename: "00002.mpls",
		PlayItems: []*model.PlayItem{
			{ClipID: "00007", InTime: 0, OutTime: 45 * 1800000},
		},
	}
	ep := &model.Episode{
		Ordinal:      2,
		PlaylistName: "00002.mpls",
		DurationMS:   600000,
		Segments:     []model.SegmentRef{{ClipID: "00007", InMS: 600000, OutMS: 1200000, DurationMS: 600000, Label: model.LabelBody}},
	}

	out, err := Build(ep, map[string]*model.Playlist{"00002.mpls": pl}, "/disc/STREAM", "/out")
	is.NoErr(err)
	is.True(strings.Contains(out, "#EXTVLCOPT:start-time=600.000"))
	is.True(strings.Contains(out, "#EXTVLCOPT:stop-time=1200.000"))
}

func TestFilename(t *testing.T) {
	is := is.New(t)
	is.Equal(Filename(&model.Episode{Ordinal: 3}), "Episode_03.m3u")
}
