package model

// StreamClass is the coarse codec family of a StreamDescriptor.
type StreamClass string

const (
	StreamVideo   StreamClass = "video"
	StreamAudio   StreamClass = "audio"
	StreamGraphic StreamClass = "graphic"
)

// StreamDescriptor describes one elementary stream announced by an MPLS
// STN_table entry or a CLPI ProgramInfo entry. Immutable after parse.
type StreamDescriptor struct {
	PID        uint16
	StreamType byte
	CodecName  string
	Class      StreamClass
	Language   string // 3-char ISO 639-2 tag, empty if not applicable
	Attrs      map[string]string
}

// Label classifies a play item's role within its playlist.
type Label string

const (
	LabelLegal   Label = "LEGAL"
	LabelOP      Label = "OP"
	LabelED      Label = "ED"
	LabelPreview Label = "PREVIEW"
	LabelBody    Label = "BODY"
	LabelUnknown Label = "UNKNOWN"
)

// PlayItem is a half-open interval [InTime, OutTime) within one clip.
type PlayItem struct {
	ClipID              string // 5-digit ASCII clip id
	InTime              uint32 // 45 kHz ticks
	OutTime             uint32 // 45 kHz ticks
	ConnectionCondition uint8
	MultiAngle          bool
	Streams             []StreamDescriptor
	Label               Label
}

// DurationTicks returns OutTime - InTime.
func (p *PlayItem) DurationTicks() uint32 {
	return p.OutTime - p.InTime
}

// DurationMS returns the play item's duration in milliseconds.
func (p *PlayItem) DurationMS() int {
	return TicksToMS(p.DurationTicks())
}

// InMS and OutMS return the play item's absolute in/out times in ms.
func (p *PlayItem) InMS() int  { return TicksToMS(p.InTime) }
func (p *PlayItem) OutMS() int { return TicksToMS(p.OutTime) }

// ChapterMarkType distinguishes entry points from skip markers/bookmarks.
type ChapterMarkType uint8

const (
	ChapterMarkEntryPoint ChapterMarkType = 1
)

// ChapterMark is a named timestamp within a playlist.
type ChapterMark struct {
	ID          int
	MarkType    ChapterMarkType
	PlayItemRef int // index into the owning playlist's PlayItems
	Timestamp   uint32 // 45 kHz ticks, absolute within the playlist's clip timeline
	EntryESPID  *uint16
	DurationMS  int
}

// Playlist is an ordered list of play items and chapter marks read from one
// .mpls file.
type Playlist struct {
	Filename   string
	PlayItems  []*PlayItem
	Marks      []*ChapterMark
	MultiAngle bool
}

// DurationMS is the sum of the playlist's play items' durations.
func (p *Playlist) DurationMS() int {
	total := 0
	for _, pi := range p.PlayItems {
		total += pi.DurationMS()
	}
	return total
}

// ClipInfo is the normalized representation of one .clpi file.
type ClipInfo struct {
	ClipID   string
	Streams  []StreamDescriptor
	Duration *int // ms, if recorded
}

// NavGroup/NavSubGroup identify the category of an HDMV navigation command.
const (
	NavGroupBranch = 0
	NavGroupSystem = 2
)

// NavCommand is one decoded 12-byte HDMV navigation instruction.
type NavCommand struct {
	Group    uint8
	SubGroup uint8
	OpCode   uint8
	ImmOp1   bool
	ImmOp2   bool
	Operand1 uint32
	Operand2 uint32
}

// IsPlayPlaylist reports whether this command is PlayPL / PlayPL_PI /
// PlayPL_PM (group=0, sub_group=2, op_code in {0,1,2}).
func (c NavCommand) IsPlayPlaylist() bool {
	return c.Group == 0 && c.SubGroup == 2 && c.OpCode <= 2
}

// IsJumpTitle reports whether this command is JumpTitle (group=0,
// sub_group=1, op_code=1). Operand1 is the 1-based title number.
func (c NavCommand) IsJumpTitle() bool {
	return c.Group == 0 && c.SubGroup == 1 && c.OpCode == 1
}

// IsSetRegister reports whether this command is an immediate SetRegister
// write to a direct (non-indirect) general-purpose register (group=2,
// sub_group=0, imm_op2=1, operand1<0x1000).
func (c NavCommand) IsSetRegister() bool {
	return c.Group == 2 && c.SubGroup == 0 && c.ImmOp2 && c.Operand1 < 0x1000
}

// MovieObject is one entry of MovieObject.bdmv: flags plus its ordered list
// of navigation commands.
type MovieObject struct {
	ID                int
	ResumeIntention   bool
	MenuCallMask      bool
	TitleSearchMask   bool
	Commands          []NavCommand
}

// IndexObjectType distinguishes HDMV titles (in scope) from BD-J titles
// (explicitly out of scope per spec §1).
type IndexObjectType uint8

const (
	IndexObjectHDMV IndexObjectType = 1
	IndexObjectBDJ  IndexObjectType = 2
)

// IndexTitle is one title entry from index.bdmv.
type IndexTitle struct {
	TitleNumber   int
	ObjectType    IndexObjectType
	MovieObjectID int // HDMV only, else 0
	AccessType    uint8
}

// IndexBdmv is the normalized representation of index.bdmv.
type IndexBdmv struct {
	FirstPlayback IndexTitle
	TopMenu       IndexTitle
	Titles        []IndexTitle
}

// IGButtonHint is one IG menu button's navigation behavior, reconstructed
// from SetRegister commands attached to its selected/activated state.
type IGButtonHint struct {
	PageID           int
	ButtonID         int
	TargetPlaylist   *int
	ChapterMarkIndex *int
	JumpTitle        *int // 1-based, authoritative per spec §3
	Registers        map[int]uint32
}

// SegmentRef is a stable reference to one contiguous span of a source clip
// (or a synthetic scene span), used inside an Episode.
type SegmentRef struct {
	Key        string
	ClipID     string
	InMS       int
	OutMS      int
	DurationMS int
	Label      Label
}

// Episode is one inferred episode.
type Episode struct {
	Ordinal      int
	PlaylistName string
	DurationMS   int
	Confidence   float64
	Segments     []SegmentRef
	Scenes       []SegmentRef
}

// SpecialFeature is one inferred special feature (creditless OP/ED, extra,
// bumper, digital archive) in menu-visit order.
type SpecialFeature struct {
	Index        int
	Playlist     string
	DurationMS   int
	Category     Category
	ChapterStart *int
	MenuVisible  bool
}

// Warning is a non-fatal, stable-coded diagnostic surfaced in the analysis
// output.
type Warning struct {
	Code    string
	Message string
	Context map[string]any
}

const (
	WarningDuplicates  = "DUPLICATES"
	WarningNoEpisodes  = "NO_EPISODES"
	WarningPlayAllOnly = "PLAY_ALL_ONLY"
)

// Category is a playlist's inferred role.
type Category string

const (
	CategoryEpisode        Category = "episode"
	CategoryPlayAll        Category = "play_all"
	CategoryMenu           Category = "menu"
	CategoryExtra          Category = "extra"
	CategoryBumper         Category = "bumper"
	CategoryCreditlessOP   Category = "creditless_op"
	CategoryCreditlessED   Category = "creditless_ed"
	CategoryDigitalArchive Category = "digital_archive"
	CategoryPreview        Category = "preview"
)

// DiscHints is the open dict of disc-level navigation evidence: index.bdmv,
// MovieObject.bdmv, the title->playlist map derived from them, and whatever
// the IG menu stream yielded. Every field is optional; enrichment passes
// degrade to their documented fallback when a field is absent.
type DiscHints struct {
	Index          *IndexBdmv
	MovieObjects   map[int]*MovieObject
	TitlePlaylists map[int]string // title number -> playlist filename
	IGHints        []*IGButtonHint
	IGChapterRegisterWrites []int // sorted, deduplicated register-2 values seen across all IG buttons
}

// FrequencyStats is the segment-frequency record for one loose segment key.
type FrequencyStats struct {
	Count           int
	FirstItemCount  int
	LastItemCount   int
	SecondLastCount int
}

// DiscAnalysis is the full, frozen result of analyzing one BDMV tree.
type DiscAnalysis struct {
	BDMVPath string

	Playlists map[string]*Playlist // all, pre-dedup, keyed by filename
	Clips     map[string]*ClipInfo // keyed by clip id

	Episodes []*Episode
	Specials []*SpecialFeature
	Warnings []*Warning

	Classifications map[string]Category // playlist filename -> category
	PlayAll         map[string]bool     // playlist filename -> is Play-All
	DuplicateGroups [][]string          // clusters of playlist filenames sharing a loose signature
	SegmentFreq     map[string]*FrequencyStats
	Hints           *DiscHints
}
