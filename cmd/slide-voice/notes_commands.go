package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/book-expert/slide-voice/internal/notesscript"
)

func newNotesCommand(ctx *commandContext) *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "Read and write speaker notes",
	}

	notesCmd.AddCommand(newNotesGetCommand(ctx))
	notesCmd.AddCommand(newNotesSetCommand(ctx))
	notesCmd.AddCommand(newNotesExportCommand(ctx))
	notesCmd.AddCommand(newNotesImportCommand(ctx))

	return notesCmd
}

func newNotesGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <deck> <index>",
		Short: "Print the notes of one slide",
		Args:  cobra.ExactArgs(2),
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

			slide, err := file.Slide(index)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), slide.Notes())

			return nil
		},
	}
}

func newNotesSetCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "set <deck> <index> <text|->",
		Short: "Replace the notes of one slide",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseSlideIndex(args[1])
			if err != nil {
				return err
			}

			text, err := readText(cmd.InOrStdin(), args[2])
			if err != nil {
				return err
			}

			file, err := ctx.openDeck(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			err = file.SetNotes(index, text)
			if err != nil {
				return err
			}

			return exportDeck(cmd.OutOrStdout(), file, outputPath(output, args[0], "notes"))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output deck (default <deck>-notes.pptx)")

	return cmd
}

func newNotesExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <deck>",
		Short: "Write the notes of every slide as a YAML script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := ctx.openDeck(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			script := notesscript.Export(file)
			if output == "" {
				return script.Encode(cmd.OutOrStdout())
			}

			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}

			err = script.Encode(out)
			closeErr := out.Close()

			if err != nil {
				return err
			}

			return closeErr
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Script file (default stdout)")

	return cmd
}

func newNotesImportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import <deck> <script.yaml>",
		Short: "Apply a YAML notes script to a deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[1], err)
			}

			script, err := notesscript.Decode(in)
			closeErr := in.Close()

			if err != nil {
				return err
			}

			if closeErr != nil {
				return closeErr
			}

			file, err := ctx.openDeck(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			changed, err := notesscript.Apply(file, script)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated notes on %d slides\n", changed)

			return exportDeck(cmd.OutOrStdout(), file, outputPath(output, args[0], "notes"))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output deck (default <deck>-notes.pptx)")

	return cmd
}
