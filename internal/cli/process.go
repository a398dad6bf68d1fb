package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-chapterize/internal/analyze"
	"github.com/alnah/go-chapterize/internal/pipeline"
	"github.com/alnah/go-chapterize/internal/template"
)

// ProcessCmd builds the process command: the full acquire, analyze and
// chapterize flow over a URL or local file.
func ProcessCmd(env *Env) *cobra.Command {
	var (
		cfgFile string
		modeStr string
		query   string
		output  string
		save    bool
		clips   bool
		clipDir string
	)

	cmd := &cobra.Command{
		Use:   "process <url|file>",
		Short: "Download, analyze and chapterize a video",
		Long: `Process runs the full pipeline on one source: acquire the video (or use
a local file), extract its audio, ask the analysis model for topics, and
build the chapter tree. Optionally persist the course and render one clip
per segment.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := analyze.ParseMode(modeStr)
			if err != nil {
				return err
			}
			tmpl, err := template.ParseName(output)
			if err != nil {
				return err
			}
			src, err := resolveSource(args[0])
			if err != nil {
				return err
			}

			cfg, err := env.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			logger := env.NewLogger(cfg, env.Stderr)

			dl, err := env.NewDownloader(cfg, logger)
			if err != nil {
				return err
			}
			ff, err := env.NewMedia(cfg, logger)
			if err != nil {
				return err
			}
			an := env.NewAnalyzer(cfg, logger)

			opts := []pipeline.Option{
				pipeline.WithLogger(logger),
				pipeline.WithClipParallelism(cfg.ClipParallelism),
			}
			if save {
				st, err := env.OpenStore(cfg, logger)
				if err != nil {
					return err
				}
				opts = append(opts, pipeline.WithStore(st))
			}
			p := pipeline.New(dl, ff, an, opts...)

			out, err := p.Process(cmd.Context(), src, mode, query)
			if err != nil {
				return err
			}
			if err := tmpl.Render(env.Stdout, out); err != nil {
				return err
			}
			if out.CourseID != "" {
				fmt.Fprintf(env.Stderr, "saved course %s\n", out.CourseID)
			}

			if clips {
				dir := clipDir
				if dir == "" {
					dir = cfg.ClipDir
				}
				outcomes, err := p.GenerateClips(cmd.Context(), out.VideoPath, out.Chapters, dir)
				if err != nil {
					return err
				}
				rendered, skipped := 0, 0
				for _, oc := range outcomes {
					if oc.Skipped {
						skipped++
						continue
					}
					rendered++
				}
				fmt.Fprintf(env.Stderr, "clips: %d rendered, %d skipped\n", rendered, skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.Flags().StringVar(&modeStr, "mode", "segmentation", "analysis mode: segmentation, transcription or custom")
	cmd.Flags().StringVar(&query, "query", "", "custom analysis instructions (mode custom)")
	cmd.Flags().StringVarP(&output, "output", "o", template.Table,
		fmt.Sprintf("output template: %s", strings.Join(template.Names(), ", ")))
	cmd.Flags().BoolVar(&save, "save", false, "persist the course to the database")
	cmd.Flags().BoolVar(&clips, "clips", false, "render one clip per segment")
	cmd.Flags().StringVar(&clipDir, "clip-dir", "", "clip output directory (default from config)")
	return cmd
}

// resolveSource classifies a positional argument as a remote URL or a
// local file that must exist.
func resolveSource(arg string) (pipeline.Source, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return pipeline.RemoteURL(arg), nil
	}
	if _, err := os.Stat(arg); err != nil {
		return pipeline.Source{}, fmt.Errorf("%w: %s", ErrFileNotFound, arg)
	}
	return pipeline.LocalFile(arg, "video/mp4"), nil
}
