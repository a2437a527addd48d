package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "slide-voice",
		Short:         "Speaker notes and narration for PowerPoint decks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()

			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newSlidesCommand(ctx))
	rootCmd.AddCommand(newNotesCommand(ctx))
	rootCmd.AddCommand(newAttachCommand(ctx))
	rootCmd.AddCommand(newNarrateCommand(ctx))
	rootCmd.AddCommand(newSubmitCommand(ctx))

	return rootCmd
}
