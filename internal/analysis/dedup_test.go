package analysis

import (
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

func TestDedupClustersIdenticalPlaylists(t *testing.T) {
	is := is.New(t)

	item := func() *model.PlayItem { return mkPlayItem("00001", 0, 60000) }
	pl1 := &model.Playlist{Filename: "00001.mpls", PlayItems: []*model.PlayItem{item()}}
	pl2 := &model.Playlist{Filename: "00002.mpls", PlayItems: []*model.PlayItem{item()}}
	pl3 := &model.Playlist{Filename: "00003.mpls", PlayItems: []*model.PlayItem{mkPlayItem("00002", 0, 30000)}}

	disc := &model.DiscAnalysis{
		Playlists: map[string]*model.Playlist{
			pl1.Filename: pl1,
			pl2.Filename: pl2,
			pl3.Filename: pl3,
		},
		Clips: map[string]*model.ClipInfo{},
	}

	working := Dedup(disc, 250)

	is.Equal(len(working), 2) // one representative for the duplicate pair, plus pl3
	is.Equal(len(disc.DuplicateGroups), 1)
	is.Equal(disc.DuplicateGroups[0], []string{"00001.mpls", "00002.mpls"})
	is.Equal(len(disc.Warnings), 1)
	is.Equal(disc.Warnings[0].Code, model.WarningDuplicates)

	var names []string
	for _, pl := range working {
		names = append(names, pl.Filename)
	}
	is.Equal(names, []string{"00001.mpls", "00003.mpls"})
}

func TestDedupPrefersMoreChaptersAsRepresentative(t *testing.T) {
	is := is.New(t)

	item := func() *model.PlayItem { return mkPlayItem("00001", 0, 60000) }
	pl1 := &model.Playlist{Filename: "00001.mpls", PlayItems: []*model.PlayItem{item()}}
	pl2 := &model.Playlist{
		Filename:  "00002.mpls",
		PlayItems: []*model.PlayItem{item()},
		Marks:     []*model.ChapterMark{{ID: 0}},
	}

	disc := &model.DiscAnalysis{
		Playlists: map[string]*model.Playlist{
			pl1.Filename: pl1,
			pl2.Filename: pl2,
		},
		Clips: map[string]*model.ClipInfo{},
	}

	working := Dedup(disc, 250)

	is.Equal(len(working), 1)
	is.Equal(working[0].Filename, "00002.mpls")
}

func TestDedupNoClustersLeavesWorkingSetUnchanged(t *testing.T) {
	is := is.New(t)

	pl1 := &model.Playlist{Filename: "00001.mpls", PlayItems: []*model.PlayItem{mkPlayItem("00001", 0, 1000)}}
	pl2 := &model.Playlist{Filename: "00002.mpls", PlayItems: []*model.PlayItem{mkPlayItem("00002", 0, 2000)}}

	disc := &model.DiscAnalysis{
		Playlists: map[string]*model.Playlist{
			pl1.Filename: pl1,
			pl2.Filename: pl2,
		},
		Clips: map[string]*model.ClipInfo{},
	}

	working := Dedup(disc, 250)
	is.Equal(len(working), 2)
	is.Equal(len(disc.DuplicateGroups), 0)
	is.Equal(len(disc.Warnings), 0)
}
