package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/parley/internal/chat"
	"github.com/spf13/cobra"
)

var sendNewChat bool

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send a message and print the reply",
	Long: `Send a single message to the active chat and print the assistant reply.

The message is appended to the active thread, so a later 'parley' session
picks up the conversation where this left off.

Examples:
  parley send "What is a goroutine?"
  parley send --new "Let's start fresh"`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().BoolVar(&sendNewChat, "new", false, "start a new chat for this message")
}

func runSend(cmd *cobra.Command, args []string) error {
	text := args[0]

	// The controller stops after creating an implicit thread when none is
	// active, so create the thread up front and send into it directly.
	if sendNewChat || controller.ActiveID() == "" {
		if _, err := controller.NewChat(); err != nil {
			return err
		}
	}

	if err := controller.Send(context.Background(), text); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	active, ok := controller.Active()
	if !ok || len(active.Messages) == 0 {
		return fmt.Errorf("no reply received")
	}
	last := active.Messages[len(active.Messages)-1]
	if last.Sender != chat.SenderAssistant {
		return fmt.Errorf("no reply received")
	}

	fmt.Println(last.Text)
	if warn := controller.LastError(); warn != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", warn)
	}
	return nil
}
