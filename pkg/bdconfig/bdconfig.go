// Package bdconfig holds the CLI host's run configuration.
//
// Adapted from the teacher's pkg/config.Config: same flat-struct-plus-
// NewConfig()-defaults shape, retargeted from translation options to BDMV
// scan/output options. BDPL_TEST_BDMV (spec §6, test-only override) is read
// the same way the teacher read GEMINI_API_KEY from the environment.
package bdconfig

import "os"

// Config holds all configuration for a bdpl run.
type Config struct {
	// BDMVRoot is the path to the disc's BDMV directory (containing
	// PLAYLIST/, CLIPINF/, STREAM/, index.bdmv, MovieObject.bdmv).
	BDMVRoot string

	// QuantizeMS is the grid (in ms) used to compute loose playlist/segment
	// signatures. Spec default is 250.
	QuantizeMS int

	// Episode selects a single 1-based episode ordinal for the `playlist`
	// and `remux` subcommands.
	Episode int

	// OutputFile is where the `scan` subcommand writes its JSON document;
	// empty means stdout.
	OutputFile string

	// MkvmergePath and FfmpegPath name the external binaries the remux and
	// archive planners reference in their argument vectors. Neither binary
	// is invoked by this module.
	MkvmergePath string
	FfmpegPath   string

	// ArchiveFormat is the `archive` subcommand's image format. ArchiveOutDir
	// is not read by any subcommand; `archive` takes its output directory
	// from its --out flag.
	ArchiveOutDir string
	ArchiveFormat string

	// UseColors and QuietMode control the CLI logger.
	UseColors bool
	QuietMode bool

	// GeneratedAt is stamped into the `scan` JSON document's disc.generated_at
	// field. Left empty by default so output stays byte-identical across
	// runs over the same disc unless a caller opts into a timestamp.
	GeneratedAt string
}

// NewConfig creates a new configuration with default values, applying the
// BDPL_TEST_BDMV override (test-only, not part of the core contract) when
// set and no root has been given explicitly.
func NewConfig() *Config {
	return &Config{
		BDMVRoot:      os.Getenv("BDPL_TEST_BDMV"),
		QuantizeMS:    250,
		MkvmergePath:  "mkvmerge",
		FfmpegPath:    "ffmpeg",
		ArchiveFormat: "jpg",
		UseColors:     true,
		QuietMode:     false,
	}
}
