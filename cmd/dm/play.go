package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/character"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/session"
	"github.com/spf13/cobra"
)

func playCmd() *cobra.Command {
	var characterName string
	var location string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start an interactive play session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pipeline, cache, err := buildPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			_, store, closeFn, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			sheet, err := character.LoadByName(cfg.Characters.Dir, characterName)
			if err != nil {
				return err
			}

			sess, err := session.New(ctx, pipeline, cache, store, sheet, model.GameContext{Location: location})
			if err != nil {
				return err
			}

			fmt.Printf("Session %s started as %s. Describe your actions; 'quit' to stop.\n", sess.ID, sheet.Name)
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "quit" || line == "exit" {
					break
				}
				if after, ok := strings.CutPrefix(line, "go "); ok {
					sess.SetLocation(ctx, strings.TrimSpace(after))
					fmt.Printf("You travel to %s.\n", sess.Context().Location)
					continue
				}

				resolution := sess.Resolve(ctx, line)
				printResolution(resolution)
			}

			if err := sess.Save(ctx); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Printf("Session %s saved.\n", sess.ID)
			return scanner.Err()
		},
	}
	cmd.Flags().StringVarP(&characterName, "character", "c", "", "character sheet name")
	cmd.Flags().StringVarP(&location, "location", "l", "", "starting location")
	return cmd
}
