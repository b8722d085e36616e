package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List chat threads",
	Long: `List all chat threads, most recently created first.

Examples:
  parley list`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	threads := controller.Threads()
	if len(threads) == 0 {
		fmt.Println("No chats yet. Run 'parley' to start one.")
		return nil
	}

	now := time.Now()
	active := controller.ActiveID()
	for _, t := range threads {
		marker := " "
		if t.ID == active {
			marker = "*"
		}
		fmt.Printf("%s %-30s  %3d messages  %-9s  %s\n",
			marker, previewText(t.Title, 28), len(t.Messages),
			formatTimestamp(t.CreatedAt, now), t.ID)
	}
	return nil
}
