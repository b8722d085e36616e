package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the active chat",
	Long:  `Remove all messages from the active chat and reset its title.`,
	RunE:  runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	if err := controller.Clear(); err != nil {
		return fmt.Errorf("clear chat: %w", err)
	}
	fmt.Println("Chat cleared.")
	return nil
}
