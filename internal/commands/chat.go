package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finai-dev/finai/internal/chat"
	"github.com/finai-dev/finai/internal/config"
	"github.com/finai-dev/finai/internal/log"
	"github.com/finai-dev/finai/internal/render"
	"github.com/finai-dev/finai/internal/transcript"
)

func newChatCommand(opts *rootOptions) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask the finance assistant",
		Long: `Ask the finance assistant about your spending.

Without --message, chat reads questions line by line from stdin.
Type /clear to start over and /quit to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts, message)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "ask one question and exit")

	return cmd
}

// newSession builds a chat session from config, recording turns when a
// transcript path is set.
func newSession(cfg *config.Config) *chat.Session {
	opts := []chat.Option{chat.WithGreeting(cfg.Chat.Greeting)}
	if cfg.Chat.Transcript != "" {
		opts = append(opts, chat.WithRecorder(transcript.NewFile(cfg.Chat.Transcript)))
	}
	return chat.NewSession(opts...)
}

func runChat(cmd *cobra.Command, opts *rootOptions, message string) error {
	ctx := cmd.Context()
	e, err := setup(opts, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	session := newSession(e.cfg)
	logger := e.logger.WithComponent(log.ComponentChat).With(log.FieldSessionID, session.ID())
	r := render.NewReport(cmd.OutOrStdout(), e.cfg.Display.Currency)

	if message != "" {
		reply, err := session.Send(ctx, e.client, message)
		if err != nil {
			logger.ErrorContext(ctx, "advisor request failed", log.FieldError, err)
			return errors.New(chat.ErrorText)
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	}

	r.Transcript(session.Transcript())
	return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session, e.client, r, logger)
}

func chatLoop(ctx context.Context, in io.Reader, out io.Writer, session *chat.Session, adv chat.Advisor, r *render.Report, logger *log.Logger) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
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
		case "/clear":
			session.Clear()
			r.Transcript(session.Transcript())
			continue
		}

		ex, err := session.Begin(line)
		if err != nil {
			return err
		}
		printLast(r, session)

		reply, err := adv.Ask(ctx, ex.Request)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.WarnContext(ctx, "advisor request failed",
				log.FieldExchangeID, ex.ID,
				log.FieldError, err)
			session.Fail(ex, err)
		} else {
			session.Complete(ex, reply)
		}
		// The placeholder is now the reply or the error text.
		printLast(r, session)
	}
}

func printLast(r *render.Report, session *chat.Session) {
	bubbles := session.Transcript()
	r.Bubble(bubbles[len(bubbles)-1])
}
