package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/taskdeck/internal/config"
)

var configInitFlags struct {
	project bool
	force   bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage taskdeck configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a taskdeck configuration file",
	Long: `Create a taskdeck configuration file with defaults.

By default, creates a global config at ~/.config/taskdeck/taskdeck.yml.
Use --project to create taskdeck.yml in the current directory.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	configInitCmd.Flags().BoolVarP(&configInitFlags.force, "force", "f", false, "Overwrite existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if configInitFlags.project {
		targetPath = config.ProjectPath()
	}

	if !configInitFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := config.Default()
	if rootFlags.apiURL != "" {
		cfg.APIURL = rootFlags.apiURL
	}
	if rootFlags.dataDir != "" {
		cfg.DataDir = rootFlags.dataDir
	}

	var err error
	if configInitFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config written to: %s\n\n", targetPath)
	fmt.Fprintln(cmd.OutOrStdout(), "Run 'taskdeck login' to get started.")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	out := cmd.OutOrStdout()
	if !config.Exists() {
		fmt.Fprintln(out, "# no config file found; showing defaults and environment")
	}
	_, err = out.Write(data)
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
