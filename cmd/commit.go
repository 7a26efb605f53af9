package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var approveCmd = &cobra.Command{
	Use:   "approve <session-id>",
	Short: "Write a prepared session's notes to the CRM and post the call sheet",
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

		sess, err := env.pipeline.Commit(cmd.Context(), args[0], consoleEmitter)
		if err != nil {
			return err
		}
		if len(sess.FailedIDs) > 0 {
			fmt.Printf("\n%d notes failed; run approve again to retry only those\n", len(sess.FailedIDs))
		}
		return nil
	},
}

var discardCmd = &cobra.Command{
	Use:   "discard <session-id>",
	Short: "Drop a prepared session without committing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()
		return env.pipeline.Discard(args[0], consoleEmitter)
	},
}

func init() {
	rootCmd.AddCommand(approveCmd, discardCmd)
}
