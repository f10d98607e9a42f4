package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/harveston/harvestengine/internal/harvestconfig"
)

var (
	cfgFile string
	cfg     *harvestconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "harvestctl",
	Short: "Tax-loss harvesting calculation CLI",
	Long: renderBanner() + `

A command-line interface to the tax-loss harvesting optimization engine.

Features:
  • Compute minimal sell recommendations against ST/LT gain targets
  • Raise required cash while minimizing realized tax cost
  • Inspect prior calculations recorded to the audit store

For more information on a command, run: harvestctl <command> --help`,
}

// Execute adds all child commands to the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	rootCmd.AddCommand(harvestCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	loaded, err := harvestconfig.LoadWithYAML(cfgFile)
	if err != nil {
		loaded, _ = harvestconfig.Load()
	}
	cfg = loaded
}

func renderBanner() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	return style.Render("harvestctl — tax-loss harvesting engine")
}
