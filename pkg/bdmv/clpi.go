package bdmv

import (
	"fmt"

	"github.com/kanzaki-rei/bdpl-go/pkg/bdlerr"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdreader"
	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// ParseCLPI parses one .clpi file's bytes into a ClipInfo. clipID is the
// 5-digit id taken from the filename stem (e.g. "00001" from "00001.clpi").
//
// Grounded on bdpl/bdmv/clpi.py's parse_clpi / _parse_clpi_reader.
func ParseCLPI(buf []byte, clipID string) (*model.ClipInfo, error) {
	r := bdreader.New(buf)

	magic, err := r.ReadASCII(4)
	if err != nil {
		return nil, bdlerr.IoRead("clpi magic", err)
	}
	if magic != "HDMV" {
		return nil, bdlerr.FormatMagic(fmt.Sprintf("clpi: bad magic %q for clip %s", magic, clipID), nil)
	}
	version, err := r.ReadASCII(4)
	if err != nil {
		return nil, bdlerr.Truncated("clpi version", err)
	}
	if version != "0100" && version != "0200" {
		return nil, bdlerr.FormatVersion(fmt.Sprintf("clpi: unsupported version %q for clip %s", version, clipID), nil)
	}
	if err := r.Skip(4); err != nil { // sequence_info_start_address
		return nil, bdlerr.Truncated("clpi sequence_info_start_address", err)
	}
	programInfoStart, err := r.ReadU32()
	if err != nil {
		return nil, bdlerr.Truncated("clpi program_info_start_address", err)
	}

	if err := r.Seek(int(programInfoStart)); err != nil {
		return nil, bdlerr.Truncated("seek to ProgramInfo section", err)
	}
	streams, err := parseProgramInfo(r)
	if err != nil {
		return nil, err
	}

	return &model.ClipInfo{ClipID: clipID, Streams: streams}, nil
}

func parseProgramInfo(r *bdreader.Reader) ([]model.StreamDescriptor, error) {
	length, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	if err := r.Skip(1); err != nil { // reserved
		return nil, err
	}
	numPrograms, err := r.ReadU8()
	if err != nil {
		return nil, err
	}

	var streams []model.StreamDescriptor
	for p := 0; p < int(numPrograms); p++ {
		if err := r.Skip(4); err != nil { // SPN_program_sequence_start
			return streams, err
		}
		if err := r.Skip(2); err != nil { // program_map_PID
			return streams, err
		}
		numStreams, err := r.ReadU8()
		if err != nil {
			return streams, err
		}
		if err := r.Skip(1); err != nil { // num_groups
			return streams, err
		}
		for s := 0; s < int(numStreams); s++ {
			pid, err := r.ReadU16()
			if err != nil {
				return streams, err
			}
			attrLen, err := r.ReadU8()
			if err != nil {
				return streams, err
			}
			attrStart := r.Offset()

			codingType, err := r.ReadU8()
			if err == nil {
				lang, extra, perr := parseStreamAttrs(r, codingType)
				if perr != nil {
					lang, extra = "", map[string]string{}
				}
				streams = append(streams, model.StreamDescriptor{
					PID:        pid,
					StreamType: codingType,
					CodecName:  codecName(codingType),
					Class:      streamClassFor(codingType),
					Language:   lang,
					Attrs:      extra,
				})
			}

			if serr := r.Seek(attrStart + int(attrLen)); serr != nil {
				return streams, serr
			}
		}
	}
	return streams, nil
}
