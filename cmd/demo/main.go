// Demo program for the Agent CLI Go SDK.
//
// This demonstrates basic usage of the SDK against a locally installed
// Agent CLI. Requires CLAUDE_CODE_OAUTH_TOKEN or ANTHROPIC_API_KEY
// environment variable, since those are what the CLI itself checks.
//
// Usage:
//
//	go run ./cmd/demo "What is 2+2?"
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	agentcli "github.com/agentcli/agentcli-sdk-go"
)

func main() {
	if os.Getenv("CLAUDE_CODE_OAUTH_TOKEN") == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "Error: CLAUDE_CODE_OAUTH_TOKEN or ANTHROPIC_API_KEY must be set")
		os.Exit(1)
	}

	prompt := "What is 2+2? Answer briefly."
	if len(os.Args) > 1 {
		prompt = strings.Join(os.Args[1:], " ")
	}

	fmt.Printf("Prompt: %s\n\n", prompt)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := agentcli.Query(ctx, prompt,
		agentcli.WithSystemPrompt("You are a helpful assistant. Keep responses brief and to the point."),
		agentcli.WithModel("claude-sonnet-4-5-20250929"),
		agentcli.WithPermissionMode(agentcli.PermissionModeDefault),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Response:")
	fmt.Println("─────────")
	fmt.Println(result.Text)
	fmt.Println("─────────")

	for _, msg := range result.Messages {
		switch m := msg.(type) {
		case agentcli.ResultMessage:
			fmt.Printf("Status: %s\n", m.Status)
			if m.Usage != nil {
				fmt.Printf("Tokens: %d input, %d output (cost: $%.4f)\n",
					m.Usage.InputTokens,
					m.Usage.OutputTokens,
					m.TotalCostUSD,
				)
			}
		case agentcli.TodoUpdateMessage:
			for _, item := range m.Items {
				fmt.Printf("[%s] %s\n", item.Status, item.Content)
			}
		}
	}
}
