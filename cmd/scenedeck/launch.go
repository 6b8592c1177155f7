package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrWong99/scenedeck/pkg/scene"
)

func newLaunchCmd(c *cli) *cobra.Command {
	var (
		sceneNumber string
		index       int
		dryRun      bool
	)
	cmd := &cobra.Command{
		Use:   "launch <file|->",
		Short: "Copy one scene's prompt and open the generation tool",
		Long: `Extract scenes from a file (or stdin with "-"), pick one by --scene or
--index, copy its prompt (plus launch.suffix) to the clipboard and open
launch.target_url. Without either flag the first scene is launched.`,
		Example: `  scenedeck launch story.md --scene 3
  scenedeck launch story.md --index 2 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			if _, err := importInputs(cmd, a, args, false); err != nil {
				return err
			}

			rec, err := pickScene(a.Scenes(), sceneNumber, index)
			if err != nil {
				return err
			}

			if dryRun {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), a.PromptFor(rec))
				return err
			}
			if err := a.LaunchRecord(cmd.Context(), rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "launched scene %s from %s\n", rec.SceneNumber, rec.Source)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sceneNumber, "scene", "s", "", "scene number to launch (first match)")
	cmd.Flags().IntVarP(&index, "index", "i", 0, "1-based position of the scene to launch")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the prompt without touching the clipboard or browser")
	cmd.MarkFlagsMutuallyExclusive("scene", "index")
	return cmd
}

// pickScene selects by scene number when given, otherwise by 1-based index.
// An index of 0 means the first scene.
func pickScene(recs []scene.Record, number string, index int) (scene.Record, error) {
	if len(recs) == 0 {
		return scene.Record{}, fmt.Errorf("no scenes found")
	}
	if number != "" {
		for _, r := range recs {
			if r.SceneNumber == number {
				return r, nil
			}
		}
		return scene.Record{}, fmt.Errorf("no scene numbered %q", number)
	}
	if index == 0 {
		index = 1
	}
	if index < 1 || index > len(recs) {
		return scene.Record{}, fmt.Errorf("index %d out of range (1-%d)", index, len(recs))
	}
	return recs[index-1], nil
}
