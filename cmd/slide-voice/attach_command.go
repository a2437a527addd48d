package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAttachCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "attach <deck> <index> <audio.mp3>",
		Short: "Embed an existing MP3 as auto-playing narration",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseSlideIndex(args[1])
			if err != nil {
				return err
			}

			file, err := ctx.openDeck(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			result, err := file.InsertNarrationFile(index, args[2])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Slide %d: %s (shape %d, delay %d)\n",
				index, result.AudioPart, result.ShapeID, result.Delay)

			return exportDeck(cmd.OutOrStdout(), file, outputPath(output, args[0], "narrated"))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output deck (default <deck>-narrated.pptx)")

	return cmd
}
