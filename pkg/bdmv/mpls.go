package bdmv

import (
	"fmt"

	"github.com/kanzaki-rei/bdpl-go/pkg/bdlerr"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdlog"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdreader"
	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// ParseMPLS parses one .mpls file's bytes into a Playlist. filename is the
// base name recorded on the result (e.g. "00001.mpls").
//
// Grounded on bdpl/bdmv/mpls.py's parse_mpls / _parse_mpls_reader.
func ParseMPLS(buf []byte, filename string, log bdlog.Logger) (*model.Playlist, error) {
	r := bdreader.New(buf)

	magic, err := r.ReadASCII(4)
	if err != nil {
		return nil, bdlerr.IoRead("mpls magic", err)
	}
	if magic != "MPLS" {
		return nil, bdlerr.FormatMagic(fmt.Sprintf("mpls: bad magic %q in %s", magic, filename), nil)
	}
	version, err := r.ReadASCII(4)
	if err != nil {
		return nil, bdlerr.Truncated("mpls version", err)
	}
	if version != "0100" && version != "0200" {
		return nil, bdlerr.FormatVersion(fmt.Sprintf("mpls: unsupported version %q in %s", version, filename), nil)
	}

	playlistStart, err := r.ReadU32()
	if err != nil {
		return nil, bdlerr.Truncated("mpls playlist_start_address", err)
	}
	markStart, err := r.ReadU32()
	if err != nil {
		return nil, bdlerr.Truncated("mpls playlist_mark_start_address", err)
	}
	if _, err := r.ReadU32(); err != nil { // extension_data_start_address
		return nil, bdlerr.Truncated("mpls extension_data_start_address", err)
	}

	if err := r.Seek(int(playlistStart)); err != nil {
		return nil, bdlerr.Truncated("seek to PlayList section", err)
	}
	items, multiAngle, err := parsePlayList(r, log)
	if err != nil {
		return nil, err
	}

	var marks []*model.ChapterMark
	if err := r.Seek(int(markStart)); err == nil {
		marks, err = parseMarks(r)
		if err != nil {
			log.Debug("mpls.marks", fmt.Sprintf("%s: failed to parse PlayListMark section: %v", filename, err))
			marks = nil
		}
	} else {
		log.Debug("mpls.marks", fmt.Sprintf("%s: bad playlist_mark_start_address: %v", filename, err))
	}

	return &model.Playlist{
		Filename:   filename,
		PlayItems:  items,
		Marks:      marks,
		MultiAngle: multiAngle,
	}, nil
}

func parsePlayList(r *bdreader.Reader, log bdlog.Logger) ([]*model.PlayItem, bool, error) {
	if err := r.Skip(4); err != nil { // length
		return nil, false, bdlerr.Truncated("PlayList length", err)
	}
	if err := r.Skip(2); err != nil { // reserved
		return nil, false, bdlerr.Truncated("PlayList reserved", err)
	}
	numItems, err := r.ReadU16()
	if err != nil {
		return nil, false, bdlerr.Truncated("number_of_PlayItems", err)
	}
	if err := r.Skip(2); err != nil { // number_of_SubPaths
		return nil, false, bdlerr.Truncated("number_of_SubPaths", err)
	}

	multiAngle := false
	items := make([]*model.PlayItem, 0, numItems)
	for i := 0; i < int(numItems); i++ {
		item, ma, err := parsePlayItem(r, log)
		if err != nil {
			log.Debug("mpls.playitem", fmt.Sprintf("skipping PlayItem %d: %v", i, err))
			continue
		}
		if ma {
			multiAngle = true
		}
		items = append(items, item)
	}
	return items, multiAngle, nil
}

func parsePlayItem(r *bdreader.Reader, log bdlog.Logger) (*model.PlayItem, bool, error) {
	piLen, err := r.ReadU16()
	if err != nil {
		return nil, false, err
	}
	piStart := r.Offset()

	clipID, err := r.ReadASCII(5)
	if err != nil {
		return nil, false, err
	}
	if _, err := r.ReadASCII(4); err != nil { // clip_codec_identifier
		return nil, false, err
	}

	flags, err := r.ReadU16()
	if err != nil {
		return nil, false, err
	}
	isMultiAngle := (flags>>4)&1 == 1
	connectionCondition := uint8(flags & 0x0F)

	if err := r.Skip(1); err != nil { // ref_to_STC_id
		return nil, false, err
	}
	inTime, err := r.ReadU32()
	if err != nil {
		return nil, false, err
	}
	outTime, err := r.ReadU32()
	if err != nil {
		return nil, false, err
	}
	if err := r.Skip(8); err != nil { // UO_mask_table
		return nil, false, err
	}
	if err := r.Skip(1); err != nil { // random_access_flag + reserved
		return nil, false, err
	}
	stillMode, err := r.ReadU8()
	if err != nil {
		return nil, false, err
	}
	if stillMode == 0x01 {
		if err := r.Skip(2); err != nil { // still_time
			return nil, false, err
		}
	} else {
		if err := r.Skip(2); err != nil { // reserved
			return nil, false, err
		}
	}

	if isMultiAngle {
		angleCount, err := r.ReadU8()
		if err != nil {
			return nil, false, err
		}
		if err := r.Skip(1); err != nil { // flags byte
			return nil, false, err
		}
		for i := 0; i < int(angleCount)-1; i++ {
			if err := r.Skip(10); err != nil { // clip_name(5)+codec_id(4)+STC_id(1)
				return nil, false, err
			}
		}
	}

	streams, err := parseSTNTable(r)
	if err != nil {
		log.Debug("mpls.stn", fmt.Sprintf("clip %s: failed to parse STN_table: %v", clipID, err))
		streams = nil
	}

	if err := r.Seek(piStart + int(piLen)); err != nil {
		return nil, false, err
	}

	return &model.PlayItem{
		ClipID:              clipID,
		InTime:              inTime,
		OutTime:             outTime,
		ConnectionCondition: connectionCondition,
		MultiAngle:          isMultiAngle,
		Streams:             streams,
		Label:               model.LabelUnknown,
	}, isMultiAngle, nil
}

func parseSTNTable(r *bdreader.Reader) ([]model.StreamDescriptor, error) {
	stnLen, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	if stnLen == 0 {
		return nil, nil
	}
	stnStart := r.Offset()

	if err := r.Skip(2); err != nil { // reserved
		return nil, err
	}
	numVideo, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	numAudio, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	numPG, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	numIG, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	numSecAudio, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	numSecVideo, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	numPipPG, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if err := r.Skip(5); err != nil { // reserved
		return nil, err
	}

	total := int(numVideo) + int(numAudio) + int(numPG) + int(numIG) + int(numSecAudio) + int(numSecVideo) + int(numPipPG)
	streams := make([]model.StreamDescriptor, 0, total)
	for i := 0; i < total; i++ {
		streamType, pid, err := parseStreamEntry(r)
		if err != nil {
			return streams, err
		}
		codingType, lang, extra, err := parseStreamAttrsEntry(r)
		if err != nil {
			return streams, err
		}
		if extra == nil {
			extra = map[string]string{}
		}
		extra["stream_type"] = hexByte(streamType)
		streams = append(streams, model.StreamDescriptor{
			PID:        pid,
			StreamType: codingType,
			CodecName:  codecName(codingType),
			Class:      streamClassFor(codingType),
			Language:   lang,
			Attrs:      extra,
		})
	}

	if err := r.Seek(stnStart + int(stnLen)); err != nil {
		return streams, err
	}
	return streams, nil
}

// parseStreamEntry parses one stream_entry and returns (stream_type, pid).
func parseStreamEntry(r *bdreader.Reader) (streamType byte, pid uint16, err error) {
	entryLen, err := r.ReadU8()
	if err != nil {
		return 0, 0, err
	}
	entryStart := r.Offset()

	streamType, err = r.ReadU8()
	if err != nil {
		return 0, 0, err
	}
	switch streamType {
	case 0x01:
		pid, err = r.ReadU16()
	case 0x02:
		pid, err = r.ReadU16()
		if err == nil {
			err = r.Skip(2) // sub_path_id, sub_clip_entry_id
		}
	case 0x03, 0x04:
		if err = r.Skip(1); err == nil { // sub_path_id
			pid, err = r.ReadU16()
		}
	}
	if err != nil {
		return streamType, pid, err
	}
	if err := r.Seek(entryStart + int(entryLen)); err != nil {
		return streamType, pid, err
	}
	return streamType, pid, nil
}

// parseStreamAttrsEntry parses one stream_attributes block and returns
// (coding_type, lang, extra).
func parseStreamAttrsEntry(r *bdreader.Reader) (codingType byte, lang string, extra map[string]string, err error) {
	attrLen, err := r.ReadU8()
	if err != nil {
		return 0, "", nil, err
	}
	attrStart := r.Offset()

	codingType, err = r.ReadU8()
	if err != nil {
		return 0, "", nil, err
	}
	lang, extra, err = parseStreamAttrs(r, codingType)
	if err != nil {
		lang, extra = "", map[string]string{}
	}

	if serr := r.Seek(attrStart + int(attrLen)); serr != nil {
		return codingType, lang, extra, serr
	}
	return codingType, lang, extra, nil
}

func parseMarks(r *bdreader.Reader) ([]*model.ChapterMark, error) {
	if err := r.Skip(4); err != nil { // length
		return nil, err
	}
	numMarks, err := r.ReadU16()
	if err != nil {
		return nil, err
	}

	marks := make([]*model.ChapterMark, 0, numMarks)
	for i := 0; i < int(numMarks); i++ {
		if err := r.Skip(1); err != nil { // reserved
			return marks, err
		}
		markType, err := r.ReadU8()
		if err != nil {
			return marks, err
		}
		refItem, err := r.ReadU16()
		if err != nil {
			return marks, err
		}
		timestamp, err := r.ReadU32()
		if err != nil {
			return marks, err
		}
		entryESPID, err := r.ReadU16()
		if err != nil {
			return marks, err
		}
		duration, err := r.ReadU32()
		if err != nil {
			return marks, err
		}
		pid := entryESPID
		marks = append(marks, &model.ChapterMark{
			ID:          i,
			MarkType:    model.ChapterMarkType(markType),
			PlayItemRef: int(refItem),
			Timestamp:   timestamp,
			EntryESPID:  &pid,
			DurationMS:  model.ChapterDurationToMS(duration),
		})
	}
	return marks, nil
}
