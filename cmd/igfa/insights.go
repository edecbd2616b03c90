package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/igfa/internal/render"
	"github.com/Zuo-Peng/igfa/internal/search"
)

func insightsCmd() *cobra.Command {
	var friends, slow bool
	var contact string
	var minMessages, top int

	cmd := &cobra.Command{
		Use:   "insights [export.zip]",
		Short: "Show the fastest and slowest repliers, or one contact in detail",
		Example: `  igfa insights export.zip
  igfa insights export.zip --friends --top 5
  igfa insights export.zip --contact "Alice"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openExport(args)
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("min-messages") {
				minMessages = s.cfg.Analysis.MinMessages
			}
			if !cmd.Flags().Changed("top") {
				top = s.cfg.Analysis.TopN
			}
			opts := render.Options{Color: stdoutIsTerminal()}

			if contact != "" {
				c, err := findContact(s, contact)
				if err != nil {
					return err
				}
				rank, err := search.RankOf(s.db, c.Name)
				if err != nil {
					return err
				}
				fmt.Print(render.ContactDetail(c, rank, opts))
				return nil
			}

			// Neither flag given shows both lists
			if !friends && !slow {
				friends, slow = true, true
			}
			iopts := search.InsightOptions{MoreThan: minMessages, Limit: top}

			if friends {
				rows, err := search.TopFriends(s.db, iopts)
				if err != nil {
					return err
				}
				fmt.Printf("Top friends (more than %d messages, fastest replies):\n", minMessages)
				fmt.Print(render.ContactTable(rows, opts))
			}
			if slow {
				if friends {
					fmt.Println()
				}
				rows, err := search.SlowRepliers(s.db, iopts)
				if err != nil {
					return err
				}
				fmt.Printf("Slow repliers (more than %d messages, slowest replies):\n", minMessages)
				fmt.Print(render.ContactTable(rows, opts))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&friends, "friends", false, "Show the fastest repliers")
	cmd.Flags().BoolVar(&slow, "slow", false, "Show the slowest repliers")
	cmd.Flags().StringVar(&contact, "contact", "", "Show one contact with its reply-speed rank")
	cmd.Flags().IntVar(&minMessages, "min-messages", 50, "Only rank contacts with more than this many messages")
	cmd.Flags().IntVarP(&top, "top", "n", 10, "Number of contacts per list")

	return cmd
}

// findContact resolves name to a single contact. An exact (case-insensitive)
// match wins; otherwise the substring must be unambiguous.
func findContact(s *exportSession, name string) (search.Result, error) {
	matches, err := search.Contacts(s.db, search.Options{Name: name})
	if err != nil {
		return search.Result{}, err
	}
	for _, m := range matches {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	switch len(matches) {
	case 0:
		return search.Result{}, fmt.Errorf("%w: %q", search.ErrContactNotFound, name)
	case 1:
		return matches[0], nil
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Name)
	}
	return search.Result{}, fmt.Errorf("%q matches %d contacts: %s", name, len(matches), strings.Join(names, ", "))
}
