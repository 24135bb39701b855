package analysis

import (
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

func TestLabelSegmentsAssignsBodyAndLegal(t *testing.T) {
	is := is.New(t)

	legalItem := mkPlayItem("00001", 0, 10*1000)
	bodyItem := mkPlayItem("00001", 10*1000, 10*1000+7*60*1000)

	pl1 := &model.Playlist{Filename: "00001.mpls", PlayItems: []*model.PlayItem{legalItem, bodyItem}}
	legalItem2 := mkPlayItem("00001", 0, 10*1000)
	pl2 := &model.Playlist{Filename: "00002.mpls", PlayItems: []*model.PlayItem{legalItem2}}

	working := []*model.Playlist{pl1, pl2}
	freq := BuildSegmentFrequency(working, 250)
	LabelSegments(working, freq, 250)

	is.Equal(legalItem.Label, model.LabelLegal)
	is.Equal(bodyItem.Label, model.LabelBody)
}

func TestLabelSegmentsOpAndEd(t *testing.T) {
	is := is.New(t)

	opA := mkPlayItem("00099", 0, 90*1000)
	bodyA := mkPlayItem("00001", 90*1000, 90*1000+20*60*1000)
	edA := mkPlayItem("00098", 90*1000+20*60*1000, 90*1000+20*60*1000+90*1000)
	plA := &model.Playlist{Filename: "00003.mpls", PlayItems: []*model.PlayItem{opA, bodyA, edA}}

	opB := mkPlayItem("00099", 0, 90*1000)
	bodyB := mkPlayItem("00002", 90*1000, 90*1000+20*60*1000)
	edB := mkPlayItem("00098", 90*1000+20*60*1000, 90*1000+20*60*1000+90*1000)
	plB := &model.Playlist{Filename: "00004.mpls", PlayItems: []*model.PlayItem{opB, bodyB, edB}}

	working := []*model.Playlist{plA, plB}
	freq := BuildSegmentFrequency(working, 250)
	LabelSegments(working, freq, 250)

	is.Equal(opA.Label, model.LabelOP)
	is.Equal(opB.Label, model.LabelOP)
	is.Equal(edA.Label, model.LabelED)
	is.Equal(edB.Label, model.LabelED)
}

func TestLabelSegmentsPreview(t *testing.T) {
	is := is.New(t)

	body := mkPlayItem("00001", 0, 20*60*1000)
	preview := mkPlayItem("00002", 20*60*1000, 20*60*1000+30*1000)
	pl := &model.Playlist{Filename: "00005.mpls", PlayItems: []*model.PlayItem{body, preview}}

	working := []*model.Playlist{pl}
	freq := BuildSegmentFrequency(working, 250)
	LabelSegments(working, freq, 250)

	is.Equal(preview.Label, model.LabelPreview)
	is.Equal(body.Label, model.LabelBody)
}
