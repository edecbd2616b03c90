package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/igfa/internal/render"
	"github.com/Zuo-Peng/igfa/internal/search"
)

func storiesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stories [export.zip]",
		Short: "List whose stories you liked the most",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openExport(args)
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("limit") {
				limit = s.cfg.Analysis.StoryLimit
			}

			likes, err := search.StoryLikes(s.db, limit)
			if err != nil {
				return err
			}
			fmt.Print(render.StoryLikes(likes, render.Options{Color: stdoutIsTerminal()}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max accounts to list (0 = all)")

	return cmd
}
