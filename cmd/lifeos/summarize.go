package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lifeos/lifeos/pkg/flags"
	"github.com/lifeos/lifeos/pkg/summary"
)

// NewSummarizeCommand generates a weekly summary for one user from the
// command line, handy for testing prompt changes without the full server.
func NewSummarizeCommand() *cobra.Command {
	aiFlags := flags.NewAIFlags()
	dbFlags := flags.NewPostgresDatabaseFlags()
	var userID string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Generate the weekly summary for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return errors.WithMessage(err, "invalid --user value")
			}

			dbc, err := dbFlags.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "couldn't get DB client")
			}

			generator := summary.NewGenerator(summary.DBSource{DB: dbc}, aiFlags.GetLLMClient(), nil)
			text, err := generator.Weekly(context.Background(), id)
			if err != nil {
				return errors.WithMessage(err, "could not generate summary")
			}

			fmt.Fprintln(os.Stdout, text)
			return nil
		},
	}

	aiFlags.BindFlags(cmd.Flags())
	dbFlags.BindFlags(cmd.Flags())
	cmd.Flags().StringVar(&userID, "user", "", "User ID to summarize")
	if err := cmd.MarkFlagRequired("user"); err != nil {
		panic(err)
	}
	return cmd
}
