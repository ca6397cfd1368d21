package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/daybook-ai/daybook/internal/provider"
	"github.com/daybook-ai/daybook/internal/session"
	"github.com/daybook-ai/daybook/internal/store"
)

func newChatCmd() *cobra.Command {
	var resume string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start or resume a journaling conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(resume)
		},
	}
	cmd.Flags().StringVarP(&resume, "resume", "r", "", "conversation ID to resume")
	return cmd
}

// runChat starts the interactive journaling REPL.
func runChat(conversationID string) error {
	cfg := initConfig()

	eng, st, err := buildEngine(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer st.Close()

	var conv *store.Conversation
	if conversationID != "" {
		conv, err = st.GetConversation(conversationID)
		if err != nil {
			return fmt.Errorf("resume %s: %w", conversationID, err)
		}
		printRecent(st, conv.ID)
	} else {
		conv, err = st.CreateConversation()
		if err != nil {
			return err
		}
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		if conv.Title != "" {
			fmt.Printf("Resuming: %s\n", conv.Title)
		} else {
			fmt.Println("New entry. Write whatever is on your mind.")
		}
		fmt.Println("Commands: /mood /goal /goals /done /reflect /quit")
		fmt.Println()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := handleCommand(ctx, eng, st, conv.ID, line); quit {
				break
			}
			continue
		}

		if err := streamTurn(ctx, eng, conv.ID, line); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(os.Stderr, "\n%v\n", chatErrorHint(err))
		}
	}

	if interactive {
		fmt.Println("\nSaved. See you tomorrow.")
	}
	return nil
}

// streamTurn submits one message and prints reply fragments as they arrive.
func streamTurn(ctx context.Context, eng *session.Engine, conversationID, input string) error {
	events, err := eng.SubmitStream(ctx, conversationID, input)
	if err != nil {
		return err
	}
	fmt.Println()
	for event := range events {
		if event.Err != nil {
			return event.Err
		}
		fmt.Print(event.Delta)
	}
	fmt.Print("\n\n")
	return nil
}

// handleCommand dispatches a slash command. Returns true to exit the REPL.
func handleCommand(ctx context.Context, eng *session.Engine, st *store.SQLiteStore, conversationID, line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "/quit", "/exit", "/q":
		return true

	case "/mood":
		if rest == "" {
			if mood, err := st.LatestMood(); err == nil && mood != nil {
				fmt.Printf("Current mood: %s (%s)\n", mood.Label, mood.CreatedAt.Format("Jan 2 15:04"))
			} else {
				fmt.Println("No mood recorded yet. Use: /mood <label>")
			}
			return false
		}
		if _, err := eng.SetMood(rest, conversationID); err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Printf("Mood recorded: %s\n", rest)
		}

	case "/goal":
		if rest == "" {
			fmt.Println("Usage: /goal <description>")
			return false
		}
		if g, err := eng.AddGoal(rest); err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Printf("Goal added: %s (%s)\n", g.Description, shortID(g.ID))
		}

	case "/goals":
		printGoals(st)

	case "/done":
		if rest == "" {
			fmt.Println("Usage: /done <goal-id>")
			return false
		}
		if err := completeByPrefix(eng, st, rest); err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Println("Goal completed.")
		}

	case "/reflect":
		if rest == "" {
			rest = "today"
		}
		prompt, err := eng.ReflectionPrompt(ctx, rest)
		if err != nil {
			fmt.Fprintln(os.Stderr, chatErrorHint(err))
		} else {
			fmt.Printf("\n%s\n\n", prompt)
		}

	default:
		fmt.Printf("Unknown command %s\n", name)
	}
	return false
}

// completeByPrefix resolves a goal by ID prefix so users can type the short
// form shown in listings.
func completeByPrefix(eng *session.Engine, st *store.SQLiteStore, prefix string) error {
	goals, err := st.OpenGoals()
	if err != nil {
		return err
	}
	for _, g := range goals {
		if strings.HasPrefix(g.ID, prefix) {
			return eng.CompleteGoal(g.ID)
		}
	}
	return fmt.Errorf("no open goal matching %q", prefix)
}

func printGoals(st *store.SQLiteStore) {
	goals, err := st.OpenGoals()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if len(goals) == 0 {
		fmt.Println("No open goals.")
		return
	}
	for _, g := range goals {
		fmt.Printf("  %s  %s\n", shortID(g.ID), g.Description)
	}
}

// printRecent replays the tail of a resumed conversation for orientation.
func printRecent(st *store.SQLiteStore, conversationID string) {
	latest, err := st.LatestSeq(conversationID)
	if err != nil || latest == 0 {
		return
	}
	from := latest - 5
	if from < 1 {
		from = 1
	}
	msgs, err := st.Messages(conversationID, from, latest)
	if err != nil {
		return
	}
	for _, m := range msgs {
		label := "you"
		if m.Role == store.RoleAssistant {
			label = "daybook"
		}
		fmt.Printf("[%s] %s\n", label, m.Content)
	}
	fmt.Println()
}

// chatErrorHint turns transport failures into actionable messages.
func chatErrorHint(err error) string {
	if provider.IsRetryable(err) {
		return fmt.Sprintf("%v\nThe model server looks unreachable. Is it running? Your message was saved; just send the next one when it is back.", err)
	}
	return err.Error()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
