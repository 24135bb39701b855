package bdmv

import (
	"fmt"

	"github.com/kanzaki-rei/bdpl-go/pkg/bdlerr"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdlog"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdreader"
	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// ParseIndex parses an index.bdmv file's bytes.
//
// Grounded on bdpl/bdmv/index_bdmv.py's parse_index_bdmv / _parse_index_reader.
func ParseIndex(buf []byte, log bdlog.Logger) (*model.IndexBdmv, error) {
	r := bdreader.New(buf)

	magic, err := r.ReadASCII(4)
	if err != nil {
		return nil, bdlerr.IoRead("index.bdmv magic", err)
	}
	if magic != "INDX" {
		return nil, bdlerr.FormatMagic(fmt.Sprintf("index.bdmv: bad magic %q", magic), nil)
	}
	version, err := r.ReadASCII(4)
	if err != nil {
		return nil, bdlerr.Truncated("index.bdmv version", err)
	}
	if version != "0100" && version != "0200" {
		return nil, bdlerr.FormatVersion(fmt.Sprintf("index.bdmv: unsupported version %q", version), nil)
	}

	indexesStart, err := r.ReadU32()
	if err != nil {
		return nil, bdlerr.Truncated("indexes_start_address", err)
	}
	if _, err := r.ReadU32(); err != nil { // extension_data_start_address
		return nil, bdlerr.Truncated("index.bdmv extension_data_start_address", err)
	}

	if err := r.Seek(int(indexesStart)); err != nil {
		return nil, bdlerr.Truncated("seek to Indexes section", err)
	}
	if _, err := r.ReadU32(); err != nil { // length
		return nil, bdlerr.Truncated("Indexes section length", err)
	}

	firstPlayback, err := parseIndexEntry(r)
	if err != nil {
		return nil, bdlerr.Truncated("First Playback object entry", err)
	}
	topMenu, err := parseIndexEntry(r)
	if err != nil {
		return nil, bdlerr.Truncated("Top Menu object entry", err)
	}

	numTitles, err := r.ReadU16()
	if err != nil {
		return nil, bdlerr.Truncated("number_of_Titles", err)
	}

	titles := make([]model.IndexTitle, 0, numTitles)
	for i := 0; i < int(numTitles); i++ {
		title, err := parseIndexEntry(r)
		if err != nil {
			log.Debug("index.title", fmt.Sprintf("skipping title entry %d: %v", i, err))
			continue
		}
		if title.ObjectType == 0 {
			continue
		}
		title.TitleNumber = i
		titles = append(titles, title)
	}

	return &model.IndexBdmv{
		FirstPlayback: firstPlayback,
		TopMenu:       topMenu,
		Titles:        titles,
	}, nil
}

// parseIndexEntry parses a 12-byte index entry. ObjectType is left at its
// zero value (neither IndexObjectHDMV nor IndexObjectBDJ) when no object is
// present.
func parseIndexEntry(r *bdreader.Reader) (model.IndexTitle, error) {
	flags, err := r.ReadU8()
	if err != nil {
		return model.IndexTitle{}, err
	}
	objectTypeBits := (flags >> 6) & 0x03
	accessType := (flags >> 2) & 0x0F
	if err := r.Skip(3); err != nil { // remaining flag/reserved bytes
		return model.IndexTitle{}, err
	}

	switch model.IndexObjectType(objectTypeBits) {
	case model.IndexObjectHDMV:
		if err := r.Skip(2); err != nil { // hdmv_playback_type
			return model.IndexTitle{}, err
		}
		movieObjectID, err := r.ReadU16()
		if err != nil {
			return model.IndexTitle{}, err
		}
		if err := r.Skip(4); err != nil { // reserved
			return model.IndexTitle{}, err
		}
		return model.IndexTitle{ObjectType: model.IndexObjectHDMV, MovieObjectID: int(movieObjectID), AccessType: accessType}, nil

	case model.IndexObjectBDJ:
		if _, err := r.ReadASCII(5); err != nil { // bdjo_file_name
			return model.IndexTitle{}, err
		}
		if err := r.Skip(3); err != nil { // padding
			return model.IndexTitle{}, err
		}
		return model.IndexTitle{ObjectType: model.IndexObjectBDJ, AccessType: accessType}, nil

	default:
		if err := r.Skip(8); err != nil {
			return model.IndexTitle{}, err
		}
		return model.IndexTitle{}, nil
	}
}
