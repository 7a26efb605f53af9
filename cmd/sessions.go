package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recoverable generation and prospecting sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		prep, err := env.store.ListPrep()
		if err != nil {
			return err
		}
		if len(prep) == 0 {
			fmt.Println("No generation sessions")
		} else {
			fmt.Println("Generation sessions:")
			for _, s := range prep {
				state := "in progress"
				if s.IsComplete {
					state = "complete"
				}
				fmt.Printf("  %s  %s | %s | %s  (%d prepped, %s, modified %s)\n",
					s.SessionID, s.Segment, s.Campaign, s.CallingDate,
					s.PreppedCount, state, s.Modified)
			}
		}

		forge, err := env.store.ListForge()
		if err != nil {
			return err
		}
		if len(forge) == 0 {
			fmt.Println("No prospecting sessions")
			return nil
		}
		fmt.Println("Prospecting sessions:")
		for _, s := range forge {
			fmt.Printf("  %s  %s  stage %d (%s)  %d domains, %d companies, %d people  (modified %s)\n",
				s.SessionID, s.CampaignName, s.Stage, s.Status,
				s.DiscoveredDomainsCount, s.CompaniesCount, s.PeopleCount, s.Modified)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
