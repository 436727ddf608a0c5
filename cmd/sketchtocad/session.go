package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or delete processing sessions",
		Long: `Session talks to the image-processing service's session store directly,
outside the interactive workflow. Useful for checking whether an upload
is still held server-side and for freeing it early.`,
	}
	cmd.AddCommand(newSessionShowCmd(), newSessionDeleteCmd())
	return cmd
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's bed data summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, _, err := newAdapter()
			if err != nil {
				return err
			}

			info, err := adapter.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Session: %s\n", info.SessionID)
			if info.CreatedAt != "" {
				fmt.Printf("Created: %s\n", info.CreatedAt)
			}
			fmt.Printf("Beds:    %d\n", info.BedCount)
			if len(info.ImageShape) > 0 {
				fmt.Printf("Image:   %v\n", info.ImageShape)
			}
			return nil
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session's server-side data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, _, err := newAdapter()
			if err != nil {
				return err
			}

			if err := adapter.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("🗑️  Session %s deleted\n", args[0])
			return nil
		},
	}
}
