package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-chapterize/internal/format"
)

// CoursesCmd builds the courses command group for browsing and pruning
// saved courses.
func CoursesCmd(env *Env) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Manage saved courses",
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved courses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			st, err := env.OpenStore(cfg, env.NewLogger(cfg, env.Stderr))
			if err != nil {
				return err
			}
			courses, err := st.ListCourses(cmd.Context())
			if err != nil {
				return err
			}
			if len(courses) == 0 {
				fmt.Fprintln(env.Stderr, "no saved courses")
				return nil
			}
			for _, c := range courses {
				dur := "?"
				if c.DurationSec != nil {
					dur = format.Seconds(*c.DurationSec)
				}
				fmt.Fprintf(env.Stdout, "%s  %-10s %s\n", c.ID, dur, c.Title)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved course with its chapters and segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			st, err := env.OpenStore(cfg, env.NewLogger(cfg, env.Stderr))
			if err != nil {
				return err
			}
			course, err := st.GetCourse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(env.Stdout, course.Title)
			if course.SourceURL != "" {
				fmt.Fprintf(env.Stdout, "source: %s\n", course.SourceURL)
			}
			if course.DurationSec != nil {
				fmt.Fprintf(env.Stdout, "duration: %s\n", format.Seconds(*course.DurationSec))
			}
			for i, ch := range course.Chapters {
				fmt.Fprintf(env.Stdout, "\n%d. %s\n", i+1, ch.Title)
				for _, seg := range ch.Segments {
					fmt.Fprintf(env.Stdout, "   %-14s %s\n",
						format.Range(seg.StartSec, seg.EndSec), seg.Title)
					if seg.ClipPath != "" {
						fmt.Fprintf(env.Stdout, "                  clip: %s\n", seg.ClipPath)
					}
				}
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved course and its chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			st, err := env.OpenStore(cfg, env.NewLogger(cfg, env.Stderr))
			if err != nil {
				return err
			}
			if err := st.DeleteCourse(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(env.Stderr, "deleted course %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, remove)
	return cmd
}
