package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrWong99/scenedeck/internal/app"
	"github.com/MrWong99/scenedeck/pkg/scene"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func newExtractCmd(c *cli) *cobra.Command {
	var (
		paste  bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extract scenes from files or stdin",
		Long: `Extract scenes from each file in argument order and print the combined
collection. Use "-" or --paste to read pasted text from stdin.`,
		Example: `  scenedeck extract story.md notes.txt
  pbpaste | scenedeck extract --paste --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatText && format != formatJSON {
				return fmt.Errorf("invalid --format %q (want text or json)", format)
			}
			if !paste && len(args) == 0 {
				return fmt.Errorf("no input: pass files, \"-\" or --paste")
			}

			a, err := c.newApp()
			if err != nil {
				return err
			}
			if _, err := importInputs(cmd, a, args, paste); err != nil {
				return err
			}
			return printScenes(cmd.OutOrStdout(), a.Scenes(), format)
		},
	}
	cmd.Flags().BoolVar(&paste, "paste", false, "read pasted text from stdin")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or json")
	return cmd
}

// importInputs feeds stdin (for paste or "-") and every path into a, in
// argument order. Skipped files are reported on stderr.
func importInputs(cmd *cobra.Command, a *app.App, args []string, paste bool) ([]app.ImportResult, error) {
	ctx := cmd.Context()
	var results []app.ImportResult

	readPaste := func() error {
		text, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		res, err := a.ImportPaste(ctx, string(text))
		if err != nil {
			return err
		}
		results = append(results, res)
		return nil
	}

	if paste {
		if err := readPaste(); err != nil {
			return nil, err
		}
	}

	var paths []string
	flush := func() error {
		if len(paths) == 0 {
			return nil
		}
		res, err := a.ImportFiles(ctx, paths...)
		if err != nil {
			return err
		}
		results = append(results, res)
		paths = nil
		return nil
	}
	for _, arg := range args {
		if arg != "-" {
			paths = append(paths, arg)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		if err := readPaste(); err != nil {
			return nil, err
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	for _, res := range results {
		for _, f := range res.Skipped() {
			name := f.Path
			if name == "" {
				name = f.Source
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", name, f.Err)
		}
	}
	return results, nil
}

func printScenes(w io.Writer, recs []scene.Record, format string) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if recs == nil {
			recs = []scene.Record{}
		}
		return enc.Encode(recs)
	}

	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "no scenes found")
		return err
	}
	for i, r := range recs {
		if _, err := fmt.Fprintf(w, "%d. [%s #%s] %s\n   %s\n", i+1, r.Source, r.SceneNumber, r.ShortLabel, r.Description); err != nil {
			return err
		}
	}
	return nil
}
