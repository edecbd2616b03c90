package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/igfa/internal/render"
	"github.com/Zuo-Peng/igfa/internal/search"
	"github.com/Zuo-Peng/igfa/internal/tui"
)

func analyzeCmd() *cobra.Command {
	var format string
	var noTUI bool
	var minMessages int

	cmd := &cobra.Command{
		Use:   "analyze [export.zip]",
		Short: "Analyze an export and show the contact table",
		Long: `Analyze an Instagram data export (.zip) and show every one-to-one chat
with its message count and reply times.

On a terminal this opens the interactive dashboard; otherwise, or with
--no-tui, it prints a text report. --format json|yaml prints the full report.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openExport(args)
			if err != nil {
				return err
			}
			defer s.Close()

			switch format {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(s.report)
			case "yaml":
				enc := yaml.NewEncoder(os.Stdout)
				enc.SetIndent(2)
				if err := enc.Encode(s.report); err != nil {
					return err
				}
				return enc.Close()
			case "text":
			default:
				return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
			}

			// Interactive dashboard when stdout is a terminal; plain text for pipes
			if !noTUI && stdoutIsTerminal() {
				return tui.Run(s.db, s.report, tui.Options{
					MinMessages: s.cfg.Analysis.MinMessages,
					TopN:        s.cfg.Analysis.TopN,
				})
			}

			contacts, err := search.Contacts(s.db, search.Options{MinMessages: minMessages})
			if err != nil {
				return err
			}
			sum, err := search.Summarize(s.db)
			if err != nil {
				return err
			}
			fmt.Print(render.Report(s.report, sum, contacts, render.Options{Color: stdoutIsTerminal()}))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text/json/yaml)")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Print the text report even on a terminal")
	cmd.Flags().IntVar(&minMessages, "min-messages", 0, "Only list contacts with at least this many messages")

	return cmd
}
