package bdmv

import (
	"fmt"

	"github.com/kanzaki-rei/bdpl-go/pkg/bdlerr"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdlog"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdreader"
	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// ParseMovieObjects parses a MovieObject.bdmv file's bytes.
//
// Grounded on bdpl/bdmv/movieobject_bdmv.py's parse_movieobject_bdmv /
// _parse_reader.
func ParseMovieObjects(buf []byte, log bdlog.Logger) ([]*model.MovieObject, error) {
	r := bdreader.New(buf)

	magic, err := r.ReadASCII(4)
	if err != nil {
		return nil, bdlerr.IoRead("MovieObject.bdmv magic", err)
	}
	if magic != "MOBJ" {
		return nil, bdlerr.FormatMagic(fmt.Sprintf("MovieObject.bdmv: bad magic %q", magic), nil)
	}
	if _, err := r.ReadASCII(4); err != nil { // version
		return nil, bdlerr.Truncated("MovieObject.bdmv version", err)
	}

	// Skip the rest of the 40-byte header (extension_data_start + padding).
	if err := r.Seek(40); err != nil {
		return nil, bdlerr.Truncated("MovieObject.bdmv header padding", err)
	}

	if _, err := r.ReadU32(); err != nil { // section length
		return nil, bdlerr.Truncated("MovieObjects section length", err)
	}
	if err := r.Skip(4); err != nil { // reserved
		return nil, bdlerr.Truncated("MovieObjects reserved", err)
	}
	numObjects, err := r.ReadU16()
	if err != nil {
		return nil, bdlerr.Truncated("number_of_mobjs", err)
	}

	objects := make([]*model.MovieObject, 0, numObjects)
	for idx := 0; idx < int(numObjects); idx++ {
		obj, err := parseMovieObject(r, idx)
		if err != nil {
			return objects, bdlerr.Truncated(fmt.Sprintf("movie object %d", idx), err)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func parseMovieObject(r *bdreader.Reader, idx int) (*model.MovieObject, error) {
	flags, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	resumeIntention := (flags>>7)&1 == 1
	menuCallMask := (flags>>6)&1 == 1
	titleSearchMask := (flags>>5)&1 == 1
	if err := r.Skip(1); err != nil { // reserved
		return nil, err
	}
	numCommands, err := r.ReadU16()
	if err != nil {
		return nil, err
	}

	commands := make([]model.NavCommand, 0, numCommands)
	for i := 0; i < int(numCommands); i++ {
		raw, err := r.ReadBytes(navCommandSize)
		if err != nil {
			return nil, err
		}
		commands = append(commands, decodeNavCommand(raw))
	}

	return &model.MovieObject{
		ID:              idx,
		ResumeIntention: resumeIntention,
		MenuCallMask:    menuCallMask,
		TitleSearchMask: titleSearchMask,
		Commands:        commands,
	}, nil
}

// ReferencedPlaylists returns the playlist numbers this movie object's play
// commands target, in command order.
func ReferencedPlaylists(obj *model.MovieObject) []uint32 {
	var out []uint32
	for _, c := range obj.Commands {
		if c.IsPlayPlaylist() {
			out = append(out, c.Operand1)
		}
	}
	return out
}

// ReferencedTitles returns the 1-based title numbers this movie object's
// JumpTitle commands target, in command order.
func ReferencedTitles(obj *model.MovieObject) []uint32 {
	var out []uint32
	for _, c := range obj.Commands {
		if c.IsJumpTitle() {
			out = append(out, c.Operand1)
		}
	}
	return out
}
