package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-chapterize/internal/format"
	"github.com/alnah/go-chapterize/internal/lang"
	"github.com/alnah/go-chapterize/internal/pipeline"
	"github.com/alnah/go-chapterize/internal/timestamp"
)

// TranscriptCmd builds the transcript command: pull captions for a URL
// and either print them or turn them into suggested segments.
func TranscriptCmd(env *Env) *cobra.Command {
	var (
		cfgFile  string
		langsCSV string
		segments bool
		prompt   string
	)

	cmd := &cobra.Command{
		Use:   "transcript <url>",
		Short: "Fetch captions, optionally suggesting segments from them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			langs, err := lang.ParseList(langsCSV)
			if err != nil {
				return err
			}

			cfg, err := env.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			if len(langs) > 0 {
				cfg.CaptionLanguages = langs
			}
			logger := env.NewLogger(cfg, env.Stderr)

			dl, err := env.NewDownloader(cfg, logger)
			if err != nil {
				return err
			}

			if !segments {
				vtt, err := dl.Transcript(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(env.Stdout, timestamp.FlattenVTT(vtt))
				return nil
			}

			an := env.NewAnalyzer(cfg, logger)
			p := pipeline.New(dl, nil, an, pipeline.WithLogger(logger))
			segs, err := p.ProcessTranscript(cmd.Context(), args[0], prompt)
			if err != nil {
				return err
			}
			for _, s := range segs {
				fmt.Fprintf(env.Stdout, "%-14s %s\n",
					format.Range(s.StartSeconds, s.EndSeconds), s.Title)
				if s.Summary != "" {
					fmt.Fprintf(env.Stdout, "               %s\n", s.Summary)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.Flags().StringVar(&langsCSV, "langs", "", "caption language preference, comma separated (e.g. en,en-US)")
	cmd.Flags().BoolVar(&segments, "segments", false, "ask the model for segments instead of printing the transcript")
	cmd.Flags().StringVar(&prompt, "prompt", "", "extra instructions for segment suggestion")
	return cmd
}
