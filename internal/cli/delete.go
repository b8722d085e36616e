package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <chat-id>",
	Short: "Delete a chat thread",
	Long: `Delete the chat thread with the given id.

If the deleted thread was active, the next most recent thread becomes
active. Use 'parley list' to find thread ids.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := controller.Delete(id); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	fmt.Printf("Deleted chat %s\n", id)
	return nil
}
