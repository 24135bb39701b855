// Package languages maps the 3-letter ISO 639-2 language tags carried by
// MPLS/CLPI stream descriptors to human-readable display names, used by the
// remux planner to build `--track-name pid:DESC` arguments.
//
// Adapted from the teacher's pkg/languages.LanguageMap, which went the other
// direction (language name -> 2-letter code, for a translation target
// language flag). BDMV streams carry bibliographic ISO 639-2 codes directly,
// so this table is inverted and trimmed to the codes that show up on discs.
package languages

// CodeToName maps a 3-letter ISO 639-2 (bibliographic) language code, as
// stored verbatim in an MPLS/CLPI stream descriptor, to its display name.
var CodeToName = map[string]string{
	"eng": "English",
	"jpn": "Japanese",
	"fre": "French",
	"fra": "French",
	"ger": "German",
	"deu": "German",
	"spa": "Spanish",
	"ita": "Italian",
	"por": "Portuguese",
	"dut": "Dutch",
	"nld": "Dutch",
	"chi": "Chinese",
	"zho": "Chinese",
	"kor": "Korean",
	"rus": "Russian",
	"ara": "Arabic",
	"swe": "Swedish",
	"nor": "Norwegian",
	"dan": "Danish",
	"fin": "Finnish",
	"pol": "Polish",
	"tur": "Turkish",
	"gre": "Greek",
	"ell": "Greek",
	"heb": "Hebrew",
	"tha": "Thai",
	"vie": "Vietnamese",
	"ind": "Indonesian",
	"hin": "Hindi",
	"cze": "Czech",
	"ces": "Czech",
	"hun": "Hungarian",
	"und": "Undetermined",
}

// Name returns the display name for a language code, or the code itself
// when the code is unrecognized.
func Name(code string) string {
	if name, ok := CodeToName[code]; ok {
		return name
	}
	return code
}
