package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored play sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, store, closeFn, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			sessions, err := store.ListSessions(ctx)
			if err != nil {
				return err
			}
			for _, rec := range sessions {
				fmt.Printf("%s\t%s\t%s\t%s\n", rec.SessionID, rec.CreatedAt, rec.CharacterName, rec.Location)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "log <session-id>",
		Short: "Show a session's gameplay event log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, store, closeFn, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			events, err := store.Events(ctx, args[0])
			if err != nil {
				return err
			}
			for _, event := range events {
				fmt.Printf("%s\t%s\t%s\n", event.Timestamp.Format("2006-01-02 15:04:05"), event.Type, event.Description)
			}
			return nil
		},
	})
	return cmd
}
