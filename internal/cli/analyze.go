package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-chapterize/internal/analyze"
)

// AnalyzeCmd builds the analyze command: run topic analysis over a local
// audio file and print the model's raw summary.
func AnalyzeCmd(env *Env) *cobra.Command {
	var (
		cfgFile  string
		modeStr  string
		query    string
		duration int
		whisper  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <audio-file>",
		Short: "Analyze an audio file and print the topic summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := analyze.ParseMode(modeStr)
			if err != nil {
				return err
			}
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], ErrFileNotFound)
			}

			cfg, err := env.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			logger := env.NewLogger(cfg, env.Stderr)

			if whisper {
				if mode != analyze.ModeTranscription {
					return fmt.Errorf("--whisper requires --mode %s", analyze.ModeTranscription)
				}
				text, err := env.NewTranscriber(cfg, logger).Transcribe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(env.Stdout, text)
				return nil
			}

			if duration <= 0 {
				// A known duration improves timestamp accuracy, but the
				// analysis still works without one.
				if ff, err := env.NewMedia(cfg, logger); err == nil {
					if secs, err := ff.Duration(cmd.Context(), args[0]); err == nil {
						duration = int(secs)
					}
				}
			}

			an := env.NewAnalyzer(cfg, logger)
			summary, err := an.Topics(cmd.Context(), args[0], duration, mode, query)
			if err != nil {
				return err
			}
			fmt.Fprintln(env.Stdout, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.Flags().StringVar(&modeStr, "mode", analyze.ModeSegmentation.String(), "analysis mode: segmentation, transcription, or custom")
	cmd.Flags().StringVar(&query, "query", "", "question for custom mode")
	cmd.Flags().IntVar(&duration, "duration", 0, "audio duration in seconds, probed when omitted")
	cmd.Flags().BoolVar(&whisper, "whisper", false, "transcribe with OpenAI Whisper instead of the analysis model")
	return cmd
}
