package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/coldcall-cli/internal/pipeline"
)

var (
	prepSegment      string
	prepCampaign     string
	prepCallingDate  string
	prepSkipExisting bool
)

var prepCmd = &cobra.Command{
	Use:   "prep",
	Short: "Generate call scripts and a call sheet for a list segment",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.checkCalling(); err != nil {
			return err
		}

		sess, err := env.pipeline.Generate(cmd.Context(), pipeline.GenerateRequest{
			Segment:      prepSegment,
			Campaign:     prepCampaign,
			CallingDate:  prepCallingDate,
			SkipExisting: prepSkipExisting,
		}, consoleEmitter)
		if err != nil {
			return err
		}

		fmt.Printf("\nSession %s: %d prepped, %d skipped, %d errors\n",
			sess.ID,
			sess.Stats.Prepped,
			sess.Stats.SkippedSubscriber+sess.Stats.SkippedNoEmail+sess.Stats.SkippedExisting,
			sess.Stats.Errors,
		)
		fmt.Printf("Review and commit with: coldcall approve %s\n", sess.ID)
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Find and archive duplicate prep notes",
}

var cleanupScanCmd = &cobra.Command{
	Use:   "scan <session-id>",
	Short: "Scan a session's contacts for duplicate prep notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.checkCRM(); err != nil {
			return err
		}

		manifest, err := env.pipeline.ScanCleanup(cmd.Context(), args[0], consoleEmitter)
		if err != nil {
			return err
		}
		if manifest.RemoveCount() == 0 {
			fmt.Println("No duplicate notes found")
			return nil
		}
		fmt.Printf("\n%d duplicate notes across %d contacts\n", manifest.RemoveCount(), len(manifest.Entries))
		fmt.Printf("Archive them with: coldcall cleanup execute %s\n", args[0])
		return nil
	},
}

var cleanupExecuteCmd = &cobra.Command{
	Use:   "execute <session-id>",
	Short: "Archive the notes flagged by the last scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.checkCRM(); err != nil {
			return err
		}
		return env.pipeline.ExecuteCleanup(cmd.Context(), args[0], consoleEmitter)
	},
}

// consoleEmitter renders pipeline events as terminal lines.
func consoleEmitter(e pipeline.Event) {
	switch e.Type {
	case pipeline.EventStatus:
		fmt.Printf("  %v\n", e.Data["message"])
	case pipeline.EventProgress:
		fmt.Printf("[%v/%v] %v\n", e.Data["current"], e.Data["total"], e.Data["name"])
	case pipeline.EventSkip:
		fmt.Printf("  skip %v (%v)\n", e.Data["name"], e.Data["reason"])
	case pipeline.EventWarn:
		fmt.Printf("  warn: %v\n", e.Data["message"])
	case pipeline.EventGenerating:
		fmt.Printf("  generating script for %v...\n", e.Data["name"])
	case pipeline.EventDoneContact:
		if e.Data["cached"] == true {
			fmt.Printf("  done %v [%v] (cached)\n", e.Data["name"], e.Data["tz"])
		} else {
			fmt.Printf("  done %v [%v]\n", e.Data["name"], e.Data["tz"])
		}
	case pipeline.EventInscribed:
		fmt.Printf("[%v/%v] note created for %v\n", e.Data["current"], e.Data["total"], e.Data["name"])
	case pipeline.EventErrorContact:
		fmt.Printf("  ERROR %v: %v\n", e.Data["name"], e.Data["error"])
	case pipeline.EventError:
		fmt.Printf("ERROR: %v\n", e.Data["message"])
	case pipeline.EventScanResult:
		fmt.Printf("  %v: %v notes, %v to remove\n", e.Data["name"], e.Data["total_found"], e.Data["to_remove"])
	case pipeline.EventArchived:
		fmt.Printf("  archived note %v (%v)\n", e.Data["note_id"], e.Data["name"])
	}
}

func init() {
	prepCmd.Flags().StringVar(&prepSegment, "segment", "", "CRM list name to pull (required)")
	prepCmd.Flags().StringVar(&prepCampaign, "campaign", "", "campaign label for the notes (required)")
	prepCmd.Flags().StringVar(&prepCallingDate, "date", "", "calling date shown on the call sheet")
	prepCmd.Flags().BoolVar(&prepSkipExisting, "skip-existing", true, "skip contacts that already have a prep note")
	_ = prepCmd.MarkFlagRequired("segment")
	_ = prepCmd.MarkFlagRequired("campaign")

	cleanupCmd.AddCommand(cleanupScanCmd, cleanupExecuteCmd)
	rootCmd.AddCommand(prepCmd, cleanupCmd)
}
