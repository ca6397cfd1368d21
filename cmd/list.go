package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daybook-ai/daybook/internal/export"
	"github.com/daybook-ai/daybook/internal/store"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			convs, err := st.ListConversations()
			if err != nil {
				return err
			}
			printConversations(convs)
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search conversations by title and content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			convs, err := st.SearchConversations(args[0], 20)
			if err != nil {
				return err
			}
			if len(convs) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			printConversations(convs)
			return nil
		},
	}
}

func printConversations(convs []store.Conversation) {
	if len(convs) == 0 {
		fmt.Println("No conversations yet. Run: daybook chat")
		return
	}
	for _, c := range convs {
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		marker := " "
		if c.Status == store.StatusArchived {
			marker = "a"
		}
		fmt.Printf("%s %s  %s  %3d msgs  %s\n",
			marker, shortID(c.ID), c.UpdatedAt.Format("2006-01-02 15:04"), c.MessageCount, title)
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Print a conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := resolveConversation(st, args[0])
			if err != nil {
				return err
			}
			msgs, err := st.MessagesFrom(id, 1)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Printf("[%s] %s\n", m.Role, m.Content)
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <conversation-id>",
		Short: "Export a conversation as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := resolveConversation(st, args[0])
			if err != nil {
				return err
			}
			doc, err := export.Markdown(st, id)
			if err != nil {
				return err
			}
			if outPath == "" {
				fmt.Print(doc)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(doc), 0644); err != nil {
				return err
			}
			fmt.Printf("Exported to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <conversation-id>",
		Short: "Archive a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := resolveConversation(st, args[0])
			if err != nil {
				return err
			}
			if err := st.ArchiveConversation(id); err != nil {
				return err
			}
			fmt.Println("Archived.")
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <conversation-id>",
		Short: "Delete a conversation and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := resolveConversation(st, args[0])
			if err != nil {
				return err
			}
			if !force {
				return fmt.Errorf("deletion is permanent; re-run with --force")
			}
			if err := st.DeleteConversation(id); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")
	return cmd
}

// resolveConversation accepts a full ID or the short prefix shown by list.
func resolveConversation(st *store.SQLiteStore, ref string) (string, error) {
	if _, err := st.GetConversation(ref); err == nil {
		return ref, nil
	}
	convs, err := st.ListConversations()
	if err != nil {
		return "", err
	}
	match := ""
	for _, c := range convs {
		if len(ref) >= 4 && len(c.ID) >= len(ref) && c.ID[:len(ref)] == ref {
			if match != "" {
				return "", fmt.Errorf("ambiguous conversation prefix %q", ref)
			}
			match = c.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no conversation matching %q: %w", ref, store.ErrNotFound)
	}
	return match, nil
}
