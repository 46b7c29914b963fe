package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"fitness-chatter/internal/chat"
	"fitness-chatter/internal/config"
	"fitness-chatter/internal/llm"
	"fitness-chatter/internal/storage"
)

// AskParams are the arguments of the ask_fitness_assistant tool.
type AskParams struct {
	UserID   string `json:"user_id" mcp:"identifier whose conversation history is used and extended"`
	Question string `json:"question" mcp:"the question to ask the fitness assistant"`
}

type FitnessMCPServer struct {
	chat *chat.Service
}

// Ask runs one chat turn and returns the assistant's reply as text.
func (s *FitnessMCPServer) Ask(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AskParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	log.Printf("MCP Server: question from %s", args.UserID)

	reply, err := s.chat.Reply(ctx, args.UserID, args.Question)
	if err != nil {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to answer: %v", err)},
			},
		}, nil
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: reply},
		},
		Meta: map[string]interface{}{
			"user_id": args.UserID,
			"success": true,
		},
	}, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg := config.New()
	ctx := context.Background()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s history store: %v", cfg.HistoryBackend, err)
	}
	defer closeStore(context.Background())

	llmClient, err := llm.New(cfg)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "fitness-chatter-mcp",
		Version: "1.0.0",
	}, nil)

	fitness := &FitnessMCPServer{chat: chat.NewService(store, llmClient)}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_fitness_assistant",
		Description: "Asks the fitness assistant a question, using and extending the user's conversation history",
	}, fitness.Ask)

	log.Printf("Starting fitness MCP server on stdin/stdout")
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
