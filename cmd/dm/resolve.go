package main

import (
	"fmt"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/character"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	successStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	partialStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	impossibleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	checkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func resolveCmd() *cobra.Command {
	var characterName string
	var location string
	cmd := &cobra.Command{
		Use:   "resolve <action text>",
		Short: "Resolve a single player action",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pipeline, _, err := buildPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			sheet, err := character.LoadByName(cfg.Characters.Dir, characterName)
			if err != nil {
				return err
			}

			actionText := strings.Join(args, " ")
			resolution := pipeline.Resolve(ctx, actionText, sheet, model.GameContext{Location: location})
			printResolution(resolution)
			return nil
		},
	}
	cmd.Flags().StringVarP(&characterName, "character", "c", "", "character sheet name")
	cmd.Flags().StringVarP(&location, "location", "l", "", "current location")
	return cmd
}

func printResolution(resolution model.Resolution) {
	check := resolution.Check
	if check.Outcome != model.OutcomeImpossible && check.Roll > 0 {
		line := fmt.Sprintf("%s check vs DC %d: rolled %d, total %d", check.Ability, check.DC, check.Roll, check.Total)
		if check.Skill != "" {
			line = fmt.Sprintf("%s (%s) check vs DC %d: rolled %d, total %d", check.Ability, check.Skill, check.DC, check.Roll, check.Total)
		}
		fmt.Println(checkStyle.Render(line))
	}

	fmt.Println(outcomeStyle(check.Outcome).Render(strings.ToUpper(string(check.Outcome))))
	fmt.Println(renderNarrative(resolution.Narrative))
}

func outcomeStyle(outcome model.Outcome) lipgloss.Style {
	switch outcome {
	case model.OutcomeSuccess:
		return successStyle
	case model.OutcomePartialSuccess:
		return partialStyle
	case model.OutcomeImpossible:
		return impossibleStyle
	default:
		return failStyle
	}
}

func renderNarrative(narrative string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return narrative
	}
	out, err := renderer.Render(narrative)
	if err != nil {
		return narrative
	}
	return strings.TrimRight(out, "\n")
}
