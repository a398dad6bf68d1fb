package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-chapterize/internal/analyze"
)

// FormatCmd builds the format command: reflow a paginated markdown
// transcript through the model, batch by batch, into a cleaner document.
func FormatCmd(env *Env) *cobra.Command {
	var (
		cfgFile string
		style   string
		outPath string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "format <markdown-file>",
		Short: "Reformat a paginated markdown transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := analyze.ParseFormatMode(style)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("%s: %w", args[0], ErrFileNotFound)
				}
				return err
			}
			if outPath == "" {
				outPath = args[0] + ".formatted.md"
			}
			if !force {
				if _, err := os.Stat(outPath); err == nil {
					return fmt.Errorf("%s: %w", outPath, ErrOutputExists)
				}
			}

			cfg, err := env.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			logger := env.NewLogger(cfg, env.Stderr)

			an := env.NewAnalyzer(cfg, logger)
			formatted, err := an.FormatPages(cmd.Context(), string(raw), mode)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, []byte(formatted), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(env.Stderr, "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.Flags().StringVar(&style, "style", string(analyze.FormatOriginal), "formatting style: original, brief, or detail")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <input>.formatted.md)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite the output file if it exists")
	return cmd
}
