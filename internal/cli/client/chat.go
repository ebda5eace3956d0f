package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/cloo-solutions/concierge/internal/service"
	"github.com/spf13/cobra"
)

// ChatAPI is the part of APIClient a conversation needs.
type ChatAPI interface {
	Chat(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// Conversation keeps the history locally and resends all of it every turn,
// starting from the assistant's greeting.
type Conversation struct {
	api      ChatAPI
	messages []domain.ChatMessage
}

func NewConversation(api ChatAPI) *Conversation {
	c := &Conversation{api: api}
	c.Reset()
	return c
}

// Reset drops everything but the greeting.
func (c *Conversation) Reset() {
	c.messages = []domain.ChatMessage{{Role: domain.RoleAssistant, Content: service.Greeting}}
}

func (c *Conversation) Messages() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Send adds the user turn and the reply to the history. When the server
// fails, the apology it sent (or the default one) is recorded and shown
// instead, and the error is returned alongside it.
func (c *Conversation) Send(ctx context.Context, text string) (string, error) {
	c.messages = append(c.messages, domain.ChatMessage{Role: domain.RoleUser, Content: text})

	reply, err := c.api.Chat(ctx, c.Messages())
	if err != nil {
		reply = service.DefaultContact().Apology()
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.UserMessage != "" {
			reply = apiErr.UserMessage
		}
	}

	c.messages = append(c.messages, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
	return reply, err
}

// ChatCmd creates the interactive chat command.
func ChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the wellness assistant",
		Long: `Starts an interactive conversation. Type /reset to start over and
/quit (or an empty line at EOF) to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), NewConversation(api), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runChat(ctx context.Context, conv *Conversation, in io.Reader, out, errOut io.Writer) error {
	fmt.Fprintf(out, "assistant> %s\n", service.Greeting)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			conv.Reset()
			fmt.Fprintf(out, "assistant> %s\n", service.Greeting)
			continue
		}

		reply, err := conv.Send(ctx, line)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		fmt.Fprintf(out, "assistant> %s\n", reply)
	}
}

// AskCmd sends a single question with no prior history.
func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the wellness assistant one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			reply, err := NewConversation(api).Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), reply)
				return err
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"message": reply})
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}
