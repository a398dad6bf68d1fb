package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DownloadCmd builds the download command: acquisition only, no
// analysis.
func DownloadCmd(env *Env) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			logger := env.NewLogger(cfg, env.Stderr)

			dl, err := env.NewDownloader(cfg, logger)
			if err != nil {
				return err
			}

			acq, err := dl.Acquire(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if acq.CacheHit {
				fmt.Fprintln(env.Stderr, "already downloaded")
			}
			fmt.Fprintln(env.Stdout, acq.LocalPath)
			if acq.Meta != nil {
				fmt.Fprintf(env.Stderr, "title: %s\n", acq.Meta.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file path")
	return cmd
}
