package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/raphaelgruber/parley/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Printf("provider:    %s\n", c.Provider)
		fmt.Printf("model:       %s\n", c.Model)
		fmt.Printf("endpoint:    %s\n", c.Endpoint)
		fmt.Printf("api key:     %s\n", maskKey(c.APIKey))
		fmt.Printf("data dir:    %s\n", c.DataDir)
		fmt.Printf("log file:    %s\n", c.LogFile)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the API key in the config file",
	Long: `Prompt for the completion service API key without echoing it,
and store it in the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Fprint(os.Stderr, "API key: ")
		key, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read API key: %w", err)
		}

		c.APIKey = strings.TrimSpace(string(key))
		if c.APIKey == "" {
			return fmt.Errorf("API key is empty")
		}
		if err := config.Save(c); err != nil {
			return err
		}
		fmt.Println("API key saved.")
		return nil
	},
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
}
