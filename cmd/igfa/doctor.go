package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/igfa/internal/analyze"
	"github.com/Zuo-Peng/igfa/internal/archive"
	"github.com/Zuo-Peng/igfa/internal/config"
	"github.com/Zuo-Peng/igfa/internal/index"
	"github.com/Zuo-Peng/igfa/internal/render"
	"github.com/Zuo-Peng/igfa/internal/scan"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [export.zip]",
		Short: "Self-check: verify the export, show what was found and what was skipped",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			path, err := exportPath(cfg, args)
			if err != nil {
				return err
			}

			fmt.Println("=== Archive ===")
			fmt.Printf("  Path: %s\n", path)
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Printf("  Status: NOT READABLE (%v)\n", err)
				return nil
			}
			fmt.Printf("  Size: %s\n", humanize.Bytes(uint64(len(data))))

			a, err := archive.Open(data)
			if err != nil {
				fmt.Printf("  Status: %v\n", err)
				return nil
			}
			names := a.Names()
			a.Close()
			fmt.Printf("  Entries: %d\n", len(names))

			fmt.Println("\n=== Account ===")
			id, err := archive.IdentifyAccount(names)
			if err != nil {
				fmt.Printf("  Status: %v\n", err)
				return nil
			}
			fmt.Printf("  Username: %s\n", id.Username)
			fmt.Printf("  Root:     %s\n", id.Root)
			fmt.Printf("  ID:       %s\n", id.HexUsername)

			fmt.Println("\n=== Resources ===")
			sel := scan.Select(id.Root, names)
			fmt.Printf("  Conversation files: %d\n", len(sel.Conversations))
			fmt.Printf("  Story like files:   %d\n", len(sel.StoryLikes))
			fmt.Printf("  Followers files:    %d\n", len(sel.Followers))
			fmt.Printf("  Following files:    %d\n", len(sel.Following))
			fmt.Printf("  Close friend files: %d\n", len(sel.CloseFriends))
			fmt.Printf("  Deactivated chats:  %d\n", sel.DeactivatedCount())

			report, err := analyze.New(newLogger(cfg)).Analyze(data)
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}

			fmt.Println("\n=== Session Index ===")
			db, stats, err := index.Build(report)
			if err != nil {
				fmt.Printf("  Status: ERROR (%v)\n", err)
			} else {
				defer db.Close()
				fmt.Printf("  Session: %s\n", report.SessionID)
				fmt.Printf("  Rows:    %s\n", stats)
				fmt.Printf("  Status:  OK (%d of %d conversation files produced a contact)\n",
					len(report.Contacts), report.ConversationFiles)
			}

			fmt.Println("\n=== Skipped Entries ===")
			fmt.Print(render.Diagnostics(report.Diagnostics, render.Options{Color: stdoutIsTerminal()}))

			return nil
		},
	}
}
