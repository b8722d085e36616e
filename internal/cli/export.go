package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/raphaelgruber/parley/internal/chat"
	"github.com/spf13/cobra"
)

var exportOutputFile string

var exportCmd = &cobra.Command{
	Use:   "export [chat-id]",
	Short: "Export a chat as Markdown",
	Long: `Export a chat thread as a Markdown transcript.

Without a chat id the active thread is exported. Output goes to stdout
unless -o is given.

Examples:
  parley export
  parley export chat_3_9f2c1ab4 -o transcript.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutputFile, "output", "o", "", "write output to file")
}

func runExport(cmd *cobra.Command, args []string) error {
	var thread chat.Thread
	if len(args) == 1 {
		found := false
		for _, t := range controller.Threads() {
			if t.ID == args[0] {
				thread, found = t, true
				break
			}
		}
		if !found {
			return fmt.Errorf("no chat with id %s", args[0])
		}
	} else {
		var ok bool
		thread, ok = controller.Active()
		if !ok {
			return fmt.Errorf("no active chat to export")
		}
	}

	md := renderMarkdown(thread)
	if exportOutputFile == "" {
		fmt.Print(md)
		return nil
	}
	if err := os.WriteFile(exportOutputFile, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	fmt.Printf("Exported %d messages to %s\n", len(thread.Messages), exportOutputFile)
	return nil
}

func renderMarkdown(t chat.Thread) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	fmt.Fprintf(&b, "Created %s\n\n", time.UnixMilli(t.CreatedAt).Format("2006-01-02 15:04"))

	for _, msg := range t.Messages {
		who := "Assistant"
		if msg.Sender == chat.SenderUser {
			who = "You"
		}
		fmt.Fprintf(&b, "**%s** (%s):\n\n%s\n\n", who,
			time.UnixMilli(msg.Timestamp).Format("15:04"), msg.Text)
	}
	return b.String()
}
