// Command bdpl is the CLI host for the BDMV disc analyzer: it resolves a
// BDMV directory, drives the loader and analysis pipeline, and hands the
// frozen result to the JSON/M3U/chapter-XML/remux/archive emitters. None of
// the subcommands below are part of the analyzer core (spec §1) — they are
// thin, replaceable wiring around it, kept in their own main package the
// way the teacher keeps translation-invocation wiring out of pkg/.
//
// Kept the teacher's cmd/main.go shape: a cobra root command, flags bound to
// a config struct in init(), and a typed-error unwrap-and-print in main().
// Generalized to five BDMV subcommands (scan/explain/playlist/remux/archive)
// instead of the teacher's single translate verb, grounded on bdpl/cli.py's
// command set.
package main

import (
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kanzaki-rei/bdpl-go/internal/analysis"
	"github.com/kanzaki-rei/bdpl-go/internal/loader"
	"github.com/kanzaki-rei/bdpl-go/internal/logger"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdconfig"
	"github.com/kanzaki-rei/bdpl-go/pkg/bdlerr"
	"github.com/kanzaki-rei/bdpl-go/pkg/emit"
	"github.com/kanzaki-rei/bdpl-go/pkg/m3u"
	"github.com/kanzaki-rei/bdpl-go/pkg/model"
	"github.com/kanzaki-rei/bdpl-go/pkg/planner"
	"github.com/kanzaki-rei/bdpl-go/pkg/report"
)

var cfg *bdconfig.Config

var rootCmd = &cobra.Command{
	Use:   "bdpl",
	Short: "Infer episode/special-feature structure from a Blu-ray BDMV tree",
	Long: `bdpl analyzes a Blu-ray disc's BDMV authoring metadata (MPLS playlists,
CLPI clip info, index.bdmv, MovieObject.bdmv and an IG menu stream) and
infers which playlists are episodes, duplicates, Play-All compilations, or
special features.`,
}

func init() {
	cfg = bdconfig.NewConfig()

	rootCmd.PersistentFlags().IntVar(&cfg.QuantizeMS, "quantize-ms", cfg.QuantizeMS, "Loose-signature quantization grid, in ms")
	var noColors, quiet bool
	rootCmd.PersistentFlags().BoolVar(&noColors, "no-colors", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress informational output")
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		if noColors {
			cfg.UseColors = false
		}
		if quiet {
			cfg.QuietMode = true
		}
		logger.SetColorMode(cfg.UseColors)
		logger.SetQuietMode(cfg.QuietMode)
	}

	rootCmd.AddCommand(scanCmd, explainCmd, playlistCmd, remuxCmd, archiveCmd)

	scanCmd.Flags().StringVarP(&cfg.OutputFile, "output", "o", "", "Output JSON file path (default: stdout)")
	scanCmd.Flags().StringVar(&cfg.GeneratedAt, "generated-at", "", "Stamp disc.generated_at with this value (omitted by default for deterministic output)")

	explainCmd.Flags().StringP("playlist", "p", "", "Explain one specific playlist (filename or bare id)")

	playlistCmd.Flags().String("out", "./Playlists", "Output directory")
	playlistCmd.Flags().IntVar(&cfg.Episode, "episode", 0, "Generate only this 1-based episode ordinal (default: all)")

	remuxCmd.Flags().String("out", "./Episodes", "Output directory")
	remuxCmd.Flags().StringVar(&cfg.MkvmergePath, "mkvmerge-path", cfg.MkvmergePath, "Path to the mkvmerge executable")
	remuxCmd.Flags().Bool("dry-run", false, "Print planned commands without writing chapter files")
	remuxCmd.Flags().IntVar(&cfg.Episode, "episode", 0, "Plan only this 1-based episode ordinal (default: all)")

	archiveCmd.Flags().String("out", "./Archive", "Output directory")
	archiveCmd.Flags().StringVar(&cfg.FfmpegPath, "ffmpeg-path", cfg.FfmpegPath, "Path to the ffmpeg executable")
	archiveCmd.Flags().StringVar(&cfg.ArchiveFormat, "format", cfg.ArchiveFormat, "Still-frame image format: jpg, jpeg, or png")
	archiveCmd.Flags().Bool("dry-run", false, "Print planned commands to stdout instead of logging them")
}

// resolveBDMV accepts either the BDMV directory itself (it contains
// PLAYLIST/) or its parent (it contains BDMV/PLAYLIST/), mirroring
// bdpl/cli.py's resolve_bdmv.
func resolveBDMV(pathArg string) (string, error) {
	abs, err := filepath.Abs(pathArg)
	if err != nil {
		return "", bdlerr.IoRead("resolving BDMV path", err)
	}
	if fi, err := os.Stat(filepath.Join(abs, "PLAYLIST")); err == nil && fi.IsDir() {
		return abs, nil
	}
	sub := filepath.Join(abs, "BDMV")
	if fi, err := os.Stat(filepath.Join(sub, "PLAYLIST")); err == nil && fi.IsDir() {
		return sub, nil
	}
	return "", bdlerr.IoRead(fmt.Sprintf("cannot find BDMV structure at %s (expected PLAYLIST/ or BDMV/PLAYLIST/)", abs), nil)
}

// bdmvArg resolves the BDMV path argument, falling back to cfg.BDMVRoot
// (set via BDPL_TEST_BDMV) when no positional argument was given.
func bdmvArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.BDMVRoot != "" {
		return cfg.BDMVRoot, nil
	}
	return "", bdlerr.IoRead("no BDMV path given and BDPL_TEST_BDMV is unset", nil)
}

func parseAndAnalyze(pathArg string) (*model.DiscAnalysis, error) {
	bdmvPath, err := resolveBDMV(pathArg)
	if err != nil {
		return nil, err
	}
	log := logger.CoreAdapter{}
	disc, err := loader.Load(bdmvPath, log)
	if err != nil {
		return nil, err
	}
	return analysis.Analyze(disc, cfg.QuantizeMS), nil
}

func streamDir(disc *model.DiscAnalysis) string {
	return filepath.Join(disc.BDMVPath, "STREAM")
}

// selectEpisodes returns disc.Episodes, or just the one matching
// cfg.Episode (1-based) when the `--episode` flag was set to a nonzero
// value, per SPEC_FULL.md §6's `--episode N` option on playlist/remux.
func selectEpisodes(disc *model.DiscAnalysis) ([]*model.Episode, error) {
	if cfg.Episode == 0 {
		return disc.Episodes, nil
	}
	for _, ep := range disc.Episodes {
		if ep.Ordinal == cfg.Episode {
			return []*model.Episode{ep}, nil
		}
	}
	return nil, bdlerr.IoRead(fmt.Sprintf("no episode %d in analysis", cfg.Episode), nil)
}

var scanCmd = &cobra.Command{
	Use:   "scan [bdmv]",
	Short: "Detect episode/special-feature structure and emit JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := bdmvArg(args)
		if err != nil {
			return err
		}
		disc, err := parseAndAnalyze(path)
		if err != nil {
			return err
		}
		doc := emit.BuildDocument(disc, cfg.GeneratedAt)
		out, err := emit.Marshal(doc)
		if err != nil {
			return err
		}
		if cfg.OutputFile == "" {
			fmt.Println(string(out))
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			return bdlerr.IoRead("creating output directory", err)
		}
		if err := os.WriteFile(cfg.OutputFile, out, 0o644); err != nil {
			return bdlerr.IoRead("writing "+cfg.OutputFile, err)
		}
		logger.Success("Wrote: " + cfg.OutputFile)
		return nil
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain [bdmv]",
	Short: "Print a human-readable summary, or detail for one playlist",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := bdmvArg(args)
		if err != nil {
			return err
		}
		disc, err := parseAndAnalyze(path)
		if err != nil {
			return err
		}
		playlistArg, _ := cmd.Flags().GetString("playlist")
		if playlistArg != "" {
			name, ok := report.ResolvePlaylistName(disc, playlistArg)
			if !ok {
				return bdlerr.IoRead("playlist not found: "+playlistArg, nil)
			}
			detail, _ := report.PlaylistDetail(disc, name)
			fmt.Println(detail)
			return nil
		}
		fmt.Println(report.Text(disc))
		return nil
	},
}

var playlistCmd = &cobra.Command{
	Use:   "playlist [bdmv]",
	Short: "Generate .m3u debug playlists, one per inferred episode",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := bdmvArg(args)
		if err != nil {
			return err
		}
		disc, err := parseAndAnalyze(path)
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out")
		episodes, err := selectEpisodes(disc)
		if err != nil {
			return err
		}
		if len(episodes) == 0 {
			logger.Warning("No episodes found — no playlists generated.")
			return nil
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return bdlerr.IoRead("creating output directory", err)
		}
		sd := streamDir(disc)
		for _, ep := range episodes {
			text, err := m3u.Build(ep, disc.Playlists, sd, outDir)
			if err != nil {
				return err
			}
			outPath := filepath.Join(outDir, m3u.Filename(ep))
			if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
				return bdlerr.IoRead("writing "+outPath, err)
			}
			logger.Success("Created: " + outPath)
		}
		return nil
	},
}

var remuxCmd = &cobra.Command{
	Use:   "remux [bdmv]",
	Short: "Plan mkvmerge invocations that split episodes (mkvmerge is not run)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := bdmvArg(args)
		if err != nil {
			return err
		}
		disc, err := parseAndAnalyze(path)
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		episodes, err := selectEpisodes(disc)
		if err != nil {
			return err
		}
		if len(episodes) == 0 {
			logger.Warning("No episodes found.")
			return nil
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return bdlerr.IoRead("creating output directory", err)
		}
		sd := streamDir(disc)
		for _, ep := range episodes {
			outputPath := filepath.Join(outDir, fmt.Sprintf("Episode_%02d.mkv", ep.Ordinal))
			chapterPath := filepath.Join(outDir, fmt.Sprintf("Episode_%02d.chapters.xml", ep.Ordinal))
			plan := planner.BuildRemuxPlan(disc, ep, cfg.MkvmergePath, sd, outputPath, chapterPath)

			if dryRun {
				fmt.Printf("\nEpisode %d -> %s\n", ep.Ordinal, outputPath)
				fmt.Printf("  %s\n", strings.Join(plan.Args, " "))
				continue
			}

			if err := os.WriteFile(chapterPath, []byte(plan.ChapterXML), 0o644); err != nil {
				return bdlerr.IoRead("writing "+chapterPath, err)
			}
			logger.Info(fmt.Sprintf("Episode %d: %s", ep.Ordinal, strings.Join(plan.Args, " ")))
		}
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive [bdmv]",
	Short: "Plan still-frame extraction for digital-archive playlists (ffmpeg is not run)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := bdmvArg(args)
		if err != nil {
			return err
		}
		disc, err := parseAndAnalyze(path)
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return bdlerr.IoRead("creating output directory", err)
		}
		sd := streamDir(disc)
		plans, err := planner.BuildArchivePlans(disc, cfg.FfmpegPath, sd, outDir, cfg.ArchiveFormat)
		if err != nil {
			return err
		}
		if len(plans) == 0 {
			logger.Warning("No digital-archive playlists found.")
			return nil
		}
		for _, p := range plans {
			if dryRun {
				fmt.Printf("%s\n  %s\n", p.OutputPath, strings.Join(p.Args, " "))
				continue
			}
			logger.Info(fmt.Sprintf("%s: %s", p.OutputPath, strings.Join(p.Args, " ")))
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var bdErr *bdlerr.Error
		if stdErrors.As(err, &bdErr) {
			logger.Error(fmt.Sprintf("[%s] %s", strings.ToUpper(string(bdErr.Code)), bdErr.Message))
			if bdErr.Cause != nil {
				logger.Error(fmt.Sprintf("Cause: %v", bdErr.Cause))
			}
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
}
