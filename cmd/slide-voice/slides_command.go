package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSlidesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "slides <deck>",
		Short: "List slides with a preview of their notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := ctx.openDeck(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			rows := make([][]string, 0, file.SlideCount())
			for _, slide := range file.Slides() {
				rows = append(rows, []string{
					strconv.Itoa(slide.Index()),
					slide.Part(),
					strconv.Itoa(lineCount(slide.Notes())),
					firstLine(slide.Notes()),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"Index", "Part", "Lines", "Notes"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
			))

			return nil
		},
	}
}
