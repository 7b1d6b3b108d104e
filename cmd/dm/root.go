package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	debug   bool
	rootCmd = &cobra.Command{
		Use:   "dm",
		Short: "dm resolves free-text player actions into adjudicated, narrated outcomes",
	}
)

// Execute runs the root command.
func Execute() error {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", filepath.Join(".dm", "config.json"), "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("bind config flag: %w", err)
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Init(debug)
		_ = godotenv.Load()
	}
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(playCmd())
	rootCmd.AddCommand(srdCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(rollCmd())
	return rootCmd.Execute()
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = filepath.Join(".dm", "config.json")
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
}
