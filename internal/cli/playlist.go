package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-chapterize/internal/download"
)

// PlaylistCmd builds the playlist command: list the entries of a
// playlist URL without downloading anything.
func PlaylistCmd(env *Env) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "playlist <url>",
		Short: "List the videos in a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			if !download.IsPlaylistURL(url) {
				return fmt.Errorf("%w: %s", ErrNotAPlaylist, url)
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

			info, err := dl.Playlist(cmd.Context(), url)
			if err != nil {
				return err
			}

			fmt.Fprintf(env.Stdout, "%s (%d videos)\n", info.Title, len(info.Entries))
			for i, e := range info.Entries {
				fmt.Fprintf(env.Stdout, "%3d. %s\n     %s\n", i+1, e.Title, e.URL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file path")
	return cmd
}
