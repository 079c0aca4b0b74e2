package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/ganttline/internal/config"
	"github.com/fentz26/ganttline/internal/logging"
	"github.com/fentz26/ganttline/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ganttline",
	Short: "ganttline - hierarchy filters for project plans",
	Long: `ganttline reads project plans exported from spreadsheets or MS Project,
filters them by depth and by id subtree, and hands the result to a timeline renderer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// config init must work even when the existing file is broken
		if cmd.CommandPath() == "ganttline config init" {
			cfg = config.DefaultConfig()
			logger = zap.NewNop()
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ganttline version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ganttline", version)
	},
}

// setup loads the config once and builds the logger every command shares.
func setup() error {
	c, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
		if err := c.Validate(); err != nil {
			return err
		}
	}
	l, err := logging.New(c.LogLevel)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	service.Version = version
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
