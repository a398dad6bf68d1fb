package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-chapterize/internal/format"
)

// ChaptersCmd builds the chapters command: look up creator-authored
// chapters from a video's description via the YouTube Data API.
func ChaptersCmd(env *Env) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "chapters <url>",
		Short: "Print creator chapters from a video description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			logger := env.NewLogger(cfg, env.Stderr)

			yt := env.NewYouTube(cfg, logger)
			chapters, err := yt.Chapters(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(chapters) == 0 {
				fmt.Fprintln(env.Stderr, "no chapters found")
				return nil
			}
			for _, ch := range chapters {
				fmt.Fprintf(env.Stdout, "%-16s %s\n", format.Range(ch.Start, ch.End), ch.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file path")
	return cmd
}
