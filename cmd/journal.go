package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daybook-ai/daybook/internal/store"
)

func newMoodCmd() *cobra.Command {
	var history int
	cmd := &cobra.Command{
		Use:   "mood [label]",
		Short: "Record or show your mood",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := initConfig()

			if len(args) == 0 {
				st, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer st.Close()

				if history > 0 {
					moods, err := st.ListMoods(history)
					if err != nil {
						return err
					}
					for _, m := range moods {
						fmt.Printf("%s  %s\n", m.CreatedAt.Format("2006-01-02 15:04"), m.Label)
					}
					return nil
				}
				mood, err := st.LatestMood()
				if err != nil {
					return err
				}
				if mood == nil {
					fmt.Println("No mood recorded yet.")
					return nil
				}
				fmt.Printf("%s (recorded %s)\n", mood.Label, mood.CreatedAt.Format("Jan 2 15:04"))
				return nil
			}

			eng, st, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if _, err := eng.SetMood(args[0], ""); err != nil {
				return err
			}
			fmt.Printf("Mood recorded: %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&history, "history", 0, "show the last N mood entries")
	return cmd
}

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <description>",
		Short: "Add a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, st, err := buildEngine(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			desc := args[0]
			for _, a := range args[1:] {
				desc += " " + a
			}
			g, err := eng.AddGoal(desc)
			if err != nil {
				return err
			}
			fmt.Printf("Goal added: %s (%s)\n", g.Description, shortID(g.ID))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			goals, err := st.ListGoals()
			if err != nil {
				return err
			}
			if len(goals) == 0 {
				fmt.Println("No goals yet.")
				return nil
			}
			for _, g := range goals {
				fmt.Printf("%-9s %s  %s\n", g.Status, shortID(g.ID), g.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "done <goal-id>",
		Short: "Mark a goal as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, st, err := buildEngine(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()
			if err := completeByPrefix(eng, st, args[0]); err != nil {
				return err
			}
			fmt.Println("Goal completed.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "drop <goal-id>",
		Short: "Abandon a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, st, err := buildEngine(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			goals, err := st.OpenGoals()
			if err != nil {
				return err
			}
			for _, g := range goals {
				if len(args[0]) >= 4 && len(g.ID) >= len(args[0]) && g.ID[:len(args[0])] == args[0] {
					if err := eng.AbandonGoal(g.ID); err != nil {
						return err
					}
					fmt.Println("Goal abandoned.")
					return nil
				}
			}
			return fmt.Errorf("no open goal matching %q: %w", args[0], store.ErrNotFound)
		},
	})

	return cmd
}

func newReflectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reflect [topic]",
		Short: "Generate a reflective journaling prompt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, st, err := buildEngine(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			topic := "today"
			if len(args) > 0 {
				topic = args[0]
			}
			out, err := eng.ReflectionPrompt(context.Background(), topic)
			if err != nil {
				return fmt.Errorf("%s", chatErrorHint(err))
			}
			fmt.Println(out)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show journaling statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(initConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Conversations: %d\n", stats.Conversations)
			fmt.Printf("Messages:      %d\n", stats.Messages)
			fmt.Printf("Words written: %d\n", stats.WordsWritten)
			fmt.Printf("Open goals:    %d\n", stats.OpenGoals)
			fmt.Printf("Moods logged:  %d\n", stats.MoodEntries)
			if stats.FirstEntry != nil {
				fmt.Printf("Journaling since %s\n", stats.FirstEntry.Format("January 2, 2006"))
			}
			return nil
		},
	}
}
