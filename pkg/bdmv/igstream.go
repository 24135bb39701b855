package bdmv

import (
	"bufio"
	"io"

	"github.com/kanzaki-rei/bdpl-go/pkg/bdlerr"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdreader"
	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

// IG stream PIDs, per BD-ROM spec.
const (
	igPIDMin = 0x1400
	igPIDMax = 0x141F

	segICS = 0x18 // Interactive Composition Segment

	m2tsPacketSize = 192
	m2tsTSHeader   = 4 // extra 4-byte timestamp prepended to each TS packet on disc
)

// IGButton is one button in an IG menu page.
type IGButton struct {
	ButtonID   int
	X, Y       int
	AutoAction bool
	Commands   []model.NavCommand
}

// IGPage is one page of the interactive menu.
type IGPage struct {
	PageID           int
	DefaultButton    int
	DefaultActivated int
	Buttons          []IGButton
}

// InteractiveComposition is a parsed Interactive Composition Segment (ICS).
type InteractiveComposition struct {
	Width, Height int
	Pages         []IGPage
}

// igPeekBufferSize is the bufio.Reader's internal buffer. It only needs to
// hold a handful of m2tsPacketSize windows (for the 1-byte resync slide);
// it is not a whole-file buffer, per spec §5's streaming requirement.
const igPeekBufferSize = 4096

// DemuxIGStream extracts IG PES payload bytes from m2ts transport stream
// data, read sequentially off r. The backing file (potentially multi-GB)
// is never buffered whole: only a small bufio.Reader window is held at a
// time, one 192-byte packet peeked/consumed per iteration, with a 1-byte
// slide on sync loss exactly like the byte-slice original. If igPID is
// nil, the first PID in [0x1400, 0x141F] is used.
//
// Grounded on bdpl/bdmv/ig_stream.py's demux_ig_stream.
func DemuxIGStream(r io.Reader, igPID *uint16) ([]byte, error) {
	br := bufio.NewReaderSize(r, igPeekBufferSize)

	var pesData []byte
	var foundPID *uint16
	if igPID != nil {
		v := *igPID
		foundPID = &v
	}

	for {
		packet, err := br.Peek(m2tsPacketSize)
		if len(packet) < m2tsPacketSize {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break // trailing partial packet tolerated, never over-read
			}
			if err != nil {
				return pesData, err
			}
			break
		}

		ts := packet[m2tsTSHeader:m2tsPacketSize]
		if ts[0] != 0x47 {
			if _, err := br.Discard(1); err != nil {
				return pesData, err
			}
			continue
		}

		pid := (uint16(ts[1]&0x1F) << 8) | uint16(ts[2])
		adapt := (ts[3] >> 4) & 3
		pusi := (ts[1] >> 6) & 1

		if foundPID == nil && pid >= igPIDMin && pid <= igPIDMax {
			v := pid
			foundPID = &v
		}

		if foundPID != nil && pid == *foundPID {
			offset := 4
			if adapt == 2 || adapt == 3 {
				offset = 5 + int(ts[4])
			}
			if (adapt == 1 || adapt == 3) && offset <= len(ts) {
				payload := ts[offset:]
				if pusi == 1 && len(payload) >= 9 && payload[0] == 0 && payload[1] == 0 && payload[2] == 1 {
					hdrLen := int(payload[8])
					if 9+hdrLen <= len(payload) {
						pesData = append(pesData, payload[9+hdrLen:]...)
					}
				} else {
					pesData = append(pesData, payload...)
				}
			}
		}

		if _, err := br.Discard(m2tsPacketSize); err != nil {
			return pesData, err
		}
	}

	return pesData, nil
}

// extractICSData returns the body of the first ICS segment found in
// pesData, or nil if none is present.
func extractICSData(pesData []byte) []byte {
	pos := 0
	for pos+3 <= len(pesData) {
		segType := pesData[pos]
		segLen := int(pesData[pos+1])<<8 | int(pesData[pos+2])
		if segType == segICS {
			end := pos + 3 + segLen
			if end > len(pesData) {
				end = len(pesData)
			}
			return pesData[pos+3 : end]
		}
		if segLen == 0 {
			break
		}
		pos += 3 + segLen
	}
	return nil
}

// ParseICS parses an ICS body (the bytes after the 3-byte segment header).
//
// Layout reference: libbluray ig_decode.c, transcribed from
// bdpl/bdmv/ig_stream.py's parse_ics.
func ParseICS(data []byte) (*InteractiveComposition, error) {
	r := bdreader.New(data)

	width, err := r.ReadU16()
	if err != nil {
		return nil, bdlerr.Truncated("ICS video_descriptor.width", err)
	}
	height, err := r.ReadU16()
	if err != nil {
		return nil, bdlerr.Truncated("ICS video_descriptor.height", err)
	}
	if err := r.Skip(1); err != nil { // video_descriptor frame_rate/aspect byte
		return nil, bdlerr.Truncated("ICS video_descriptor tail", err)
	}
	if err := r.Skip(4); err != nil { // composition_descriptor(3) + sequence_descriptor(1)
		return nil, bdlerr.Truncated("ICS composition_descriptor", err)
	}
	if err := r.Skip(3); err != nil { // interactive_composition_data_length (24 bits)
		return nil, bdlerr.Truncated("ICS interactive_composition_data_length", err)
	}

	flagsByte, err := r.ReadU8()
	if err != nil {
		return nil, bdlerr.Truncated("ICS stream_model byte", err)
	}
	streamModel := (flagsByte >> 7) & 1
	if streamModel == 0 {
		if err := r.Skip(10); err != nil { // composition_timeout_PTS + selection_timeout_PTS
			return nil, bdlerr.Truncated("ICS timeout PTS fields", err)
		}
	}
	if err := r.Skip(3); err != nil { // user_timeout_duration (24 bits)
		return nil, bdlerr.Truncated("ICS user_timeout_duration", err)
	}

	numPages, err := r.ReadU8()
	if err != nil {
		return nil, bdlerr.Truncated("ICS number_of_pages", err)
	}

	pages := make([]IGPage, 0, numPages)
	for p := 0; p < int(numPages); p++ {
		page, err := parseICSPage(r)
		if err != nil {
			return nil, bdlerr.Truncated("ICS page", err)
		}
		pages = append(pages, page)
	}

	return &InteractiveComposition{Width: int(width), Height: int(height), Pages: pages}, nil
}

func parseICSPage(r *bdreader.Reader) (IGPage, error) {
	pageID, err := r.ReadU8()
	if err != nil {
		return IGPage{}, err
	}
	if err := r.Skip(1); err != nil { // page_version
		return IGPage{}, err
	}
	if err := r.Skip(8); err != nil { // UO_mask_table
		return IGPage{}, err
	}

	for e := 0; e < 2; e++ { // in_effects, out_effects
		if err := skipEffectSequence(r); err != nil {
			return IGPage{}, err
		}
	}

	if err := r.Skip(1); err != nil { // animation_frame_rate_code
		return IGPage{}, err
	}
	defaultButton, err := r.ReadU16()
	if err != nil {
		return IGPage{}, err
	}
	defaultActivated, err := r.ReadU16()
	if err != nil {
		return IGPage{}, err
	}
	if err := r.Skip(1); err != nil { // palette_id_ref
		return IGPage{}, err
	}
	numBogs, err := r.ReadU8()
	if err != nil {
		return IGPage{}, err
	}

	var buttons []IGButton
	for b := 0; b < int(numBogs); b++ {
		bogButtons, err := parseButtonOverlapGroup(r)
		if err != nil {
			return IGPage{}, err
		}
		buttons = append(buttons, bogButtons...)
	}

	return IGPage{
		PageID:           int(pageID),
		DefaultButton:    int(defaultButton),
		DefaultActivated: int(defaultActivated),
		Buttons:          buttons,
	}, nil
}

func skipEffectSequence(r *bdreader.Reader) error {
	numWindows, err := r.ReadU8()
	if err != nil {
		return err
	}
	if err := r.Skip(int(numWindows) * 9); err != nil {
		return err
	}
	numEffects, err := r.ReadU8()
	if err != nil {
		return err
	}
	for e := 0; e < int(numEffects); e++ {
		if err := r.Skip(4); err != nil { // duration(24) + palette_id_ref(8)
			return err
		}
		numCO, err := r.ReadU8()
		if err != nil {
			return err
		}
		for c := 0; c < int(numCO); c++ {
			if err := r.Skip(2); err != nil { // object_id
				return err
			}
			if err := r.Skip(1); err != nil { // window_id
				return err
			}
			flags, err := r.ReadU8()
			if err != nil {
				return err
			}
			cropFlag := (flags >> 7) & 1
			if err := r.Skip(4); err != nil { // x, y
				return err
			}
			if cropFlag == 1 {
				if err := r.Skip(8); err != nil { // crop x,y,w,h
					return err
				}
			}
		}
	}
	return nil
}

func parseButtonOverlapGroup(r *bdreader.Reader) ([]IGButton, error) {
	if err := r.Skip(2); err != nil { // bog_default_button
		return nil, err
	}
	numButtons, err := r.ReadU8()
	if err != nil {
		return nil, err
	}

	buttons := make([]IGButton, 0, numButtons)
	for i := 0; i < int(numButtons); i++ {
		btn, err := parseButton(r)
		if err != nil {
			return buttons, err
		}
		buttons = append(buttons, btn)
	}
	return buttons, nil
}

func parseButton(r *bdreader.Reader) (IGButton, error) {
	buttonID, err := r.ReadU16()
	if err != nil {
		return IGButton{}, err
	}
	if err := r.Skip(2); err != nil { // numeric_select_value
		return IGButton{}, err
	}
	flags, err := r.ReadU8()
	if err != nil {
		return IGButton{}, err
	}
	autoAction := (flags>>7)&1 == 1
	x, err := r.ReadU16()
	if err != nil {
		return IGButton{}, err
	}
	y, err := r.ReadU16()
	if err != nil {
		return IGButton{}, err
	}
	if err := r.Skip(8); err != nil { // neighbor button IDs: up/down/left/right
		return IGButton{}, err
	}
	if err := r.Skip(5); err != nil { // normal state
		return IGButton{}, err
	}
	if err := r.Skip(6); err != nil { // selected state
		return IGButton{}, err
	}
	if err := r.Skip(5); err != nil { // activated state
		return IGButton{}, err
	}

	numCommands, err := r.ReadU16()
	if err != nil {
		return IGButton{}, err
	}
	commands := make([]model.NavCommand, 0, numCommands)
	for c := 0; c < int(numCommands); c++ {
		raw, err := r.ReadBytes(navCommandSize)
		if err != nil {
			return IGButton{}, err
		}
		commands = append(commands, decodeNavCommand(raw))
	}

	return IGButton{
		ButtonID:   int(buttonID),
		X:          int(x),
		Y:          int(y),
		AutoAction: autoAction,
		Commands:   commands,
	}, nil
}

// ExtractMenuHints extracts actionable hints from parsed IG menu buttons:
// buttons that play a playlist, jump to a title, or set GPR registers
// (often used for episode/chapter selection). Pages and buttons are walked
// in stream order, which this system treats as menu-visit order.
//
// Grounded on bdpl/bdmv/ig_stream.py's extract_menu_hints.
func ExtractMenuHints(ics *InteractiveComposition) []*model.IGButtonHint {
	var hints []*model.IGButtonHint

	for _, page := range ics.Pages {
		for _, btn := range page.Buttons {
			if len(btn.Commands) == 0 {
				continue
			}

			hint := &model.IGButtonHint{
				PageID:    page.PageID,
				ButtonID:  btn.ButtonID,
				Registers: map[int]uint32{},
			}
			hasAction := false

			for _, cmd := range btn.Commands {
				switch {
				case cmd.IsPlayPlaylist():
					pl := int(cmd.Operand1)
					hint.TargetPlaylist = &pl
					if cmd.OpCode == 2 { // PlayPL_PM
						mk := int(cmd.Operand2)
						hint.ChapterMarkIndex = &mk
					}
					hasAction = true
				case cmd.IsJumpTitle():
					jt := int(cmd.Operand1)
					hint.JumpTitle = &jt
					hasAction = true
				case cmd.Group == model.NavGroupSystem && cmd.SubGroup == 0:
					if cmd.ImmOp2 && cmd.Operand1 < 0x1000 {
						hint.Registers[int(cmd.Operand1)] = cmd.Operand2
						hasAction = true
					}
				}
			}

			if hasAction {
				hints = append(hints, hint)
			}
		}
	}

	return hints
}

// ParseIGFromM2TS demuxes the IG stream out of m2ts data read from r and
// parses its first ICS segment. Returns nil, nil if no IG stream or ICS
// segment is present — that is a normal, silent outcome for discs with no
// menu. r is consumed sequentially and never buffered whole (spec §5).
func ParseIGFromM2TS(r io.Reader, igPID *uint16) (*InteractiveComposition, error) {
	pes, err := DemuxIGStream(r, igPID)
	if err != nil {
		return nil, bdlerr.IoRead("reading m2ts for IG demux", err)
	}
	if len(pes) == 0 {
		return nil, nil
	}
	ics := extractICSData(pes)
	if ics == nil {
		return nil, nil
	}
	return ParseICS(ics)
}
