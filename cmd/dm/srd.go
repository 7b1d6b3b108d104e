package main

import (
	"fmt"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/srd"
	"github.com/spf13/cobra"
)

func srdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "srd [category]",
		Short: "Inspect reference data fetched from the rules service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cache := srd.NewCache(srd.NewClient(cfg.SRD), cfg.SRD.MaxRecords)

			if len(args) == 0 {
				for _, category := range cache.Categories(ctx) {
					fmt.Println(category)
				}
				return nil
			}

			category := args[0]
			switch category {
			case "skills":
				for key, skill := range cache.SkillsTable(ctx) {
					fmt.Printf("%s\t%s\t%s\n", key, skill.Ability, skill.Name)
				}
			case "difficulty":
				for name, dc := range cache.DifficultyTable(ctx) {
					fmt.Printf("%s\t%d\n", name, dc)
				}
			default:
				data := cache.Load(ctx, []string{category})
				for _, record := range data[category] {
					fmt.Printf("%s\t%s\n", record.Index(), record.Name())
				}
			}
			return nil
		},
	}
	return cmd
}
