package analysis

import (
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

func mkPlayItem(clipID string, inMS, outMS int) *model.PlayItem {
	return &model.PlayItem{
		ClipID:  clipID,
		InTime:  uint32(inMS * 45),
		OutTime: uint32(outMS * 45),
	}
}

func TestBuildSegmentFrequencyCountsDistinctPlaylists(t *testing.T) {
	is := is.New(t)

	long := 11 * 60 * 1000
	shared := mkPlayItem("00001", 0, long)

	pl1 := &model.Playlist{Filename: "00001.mpls", PlayItems: []*model.PlayItem{shared}}
	pl2 := &model.Playlist{Filename: "00002.mpls", PlayItems: []*model.PlayItem{shared}}

	freq := BuildSegmentFrequency([]*model.Playlist{pl1, pl2}, 250)

	key := model.SegmentKey("00001", 0, long, 250)
	is.Equal(freq[key].Count, 2)
	is.Equal(freq[key].FirstItemCount, 2)
	is.Equal(freq[key].LastItemCount, 2)
}

func TestBuildSegmentFrequencyIgnoresShortPlaylistsForPositional(t *testing.T) {
	is := is.New(t)

	short := mkPlayItem("00002", 0, 2000)
	pl := &model.Playlist{Filename: "00010.mpls", PlayItems: []*model.PlayItem{short}}

	freq := BuildSegmentFrequency([]*model.Playlist{pl}, 250)

	key := model.SegmentKey("00002", 0, 2000, 250)
	is.Equal(freq[key].Count, 1)
	is.Equal(freq[key].FirstItemCount, 0)
	is.Equal(freq[key].LastItemCount, 0)
}

func TestBuildSegmentFrequencySecondLast(t *testing.T) {
	is := is.New(t)

	long := 11 * 60 * 1000
	a := mkPlayItem("00001", 0, long)
	b := mkPlayItem("00001", long, long+1000)
	c := mkPlayItem("00001", long+1000, long+2000)
	pl := &model.Playlist{Filename: "00020.mpls", PlayItems: []*model.PlayItem{a, b, c}}

	freq := BuildSegmentFrequency([]*model.Playlist{pl}, 250)

	secondKey := model.SegmentKey("00001", long, long+1000, 250)
	is.Equal(freq[secondKey].SecondLastCount, 1)
	is.Equal(freq[secondKey].FirstItemCount, 0)
	is.Equal(freq[secondKey].LastItemCount, 0)
}
