package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daybook-ai/daybook/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactive configuration wizard",
		Long:  "Guides you through setting up daybook: choose a model backend, name your companion, and save the config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)
	cfg := config.DefaultConfig()

	fmt.Println("Welcome to daybook.")
	fmt.Println()

	fmt.Println("Model backends:")
	fmt.Println("  1. ollama    (local, private, no API key)")
	fmt.Println("  2. lmstudio  (local, private, no API key)")
	fmt.Println("  3. openai    (or any OpenAI-compatible server)")
	fmt.Println("  4. anthropic")
	fmt.Print("\nSelect backend (1-4) [1]: ")
	choice := readLine(reader)

	switch choice {
	case "", "1":
		cfg.Provider = "openai"
		cfg.BaseURL = "http://localhost:11434/v1"
		cfg.Model = "llama3"
	case "2":
		cfg.Provider = "openai"
		cfg.BaseURL = "http://localhost:1234/v1"
		cfg.Model = ""
	case "3":
		cfg.Provider = "openai"
		fmt.Print("Base URL [https://api.openai.com/v1]: ")
		if u := readLine(reader); u != "" {
			cfg.BaseURL = u
		} else {
			cfg.BaseURL = "https://api.openai.com/v1"
		}
		fmt.Print("API key: ")
		cfg.APIKey = readLine(reader)
		fmt.Print("Model [gpt-4o-mini]: ")
		if m := readLine(reader); m != "" {
			cfg.Model = m
		} else {
			cfg.Model = "gpt-4o-mini"
		}
	case "4":
		cfg.Provider = "anthropic"
		fmt.Print("API key: ")
		cfg.APIKey = readLine(reader)
		if cfg.APIKey == "" {
			return fmt.Errorf("anthropic requires an API key")
		}
		cfg.Model = ""
	default:
		return fmt.Errorf("invalid selection %q", choice)
	}

	fmt.Print("\nWhat should your companion be called? [Daybook]: ")
	if n := readLine(reader); n != "" {
		cfg.Persona.AssistantName = n
	}
	fmt.Print("Your name (optional): ")
	cfg.Persona.UserName = readLine(reader)

	path := config.DefaultPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("\nConfig file already exists at %s\n", path)
		fmt.Print("Overwrite? [y/N]: ")
		if strings.ToLower(readLine(reader)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Printf("\nConfig saved to %s\n", path)
	fmt.Println("Start journaling with: daybook")
	return nil
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
