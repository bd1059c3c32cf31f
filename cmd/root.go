package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-arp/config"
	"go-arp/debug"
)

var (
	configPath string
	debugLog   bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "go-arp",
	Short: "Step arpeggiator for MIDI synths",
	Long: `go-arp plays lanes of notes through a traversal mode (up, down,
ping-pong, random, drunk walk...) and sends gated notes to a MIDI output.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if debugLog || cfg.Log.Debug {
			if err := debug.Enable(cfg.Log.File); err != nil {
				return fmt.Errorf("enable debug log: %w", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/go-arp/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Write a debug log (default: ~/.config/go-arp/debug.log)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(previewCmd)
}
