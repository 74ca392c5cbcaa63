package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/service"
	"github.com/spf13/cobra"
)

func AskCmd() *cobra.Command {
	var noStream bool
	var noSources bool

	cmd := &cobra.Command{
		Use:   "ask <file_id> <question...>",
		Short: "Ask a question about an uploaded document",
		Long: `Asks a question against an indexed document and prints the answer as it
streams, followed by source citations. Conversation history is kept in the
local session cache and replayed on every question.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args[1:], " ")
			return runAsk(cmd, args[0], question, noStream, noSources)
		},
	}

	cmd.Flags().BoolVar(&noStream, "no-stream", false, "Wait for the complete answer instead of streaming")
	cmd.Flags().BoolVar(&noSources, "no-sources", false, "Suppress source citations")

	return cmd
}

// chatRequest mirrors the server's chat request body.
type chatRequest struct {
	FileID  string                  `json:"file_id,omitempty"`
	Message string                  `json:"message"`
	History []HistoryTurn           `json:"history,omitempty"`
	Session *service.SessionPayload `json:"session,omitempty"`
}

// streamFrame is one decoded SSE data frame.
type streamFrame struct {
	Type    string       `json:"type"`
	Content string       `json:"content,omitempty"`
	Sources []sourceCard `json:"sources,omitempty"`
	Kind    string       `json:"kind,omitempty"`
	Message string       `json:"message,omitempty"`
}

type sourceCard struct {
	Page           int     `json:"page"`
	ChunkID        string  `json:"chunk_id"`
	Excerpt        string  `json:"excerpt"`
	RelevanceScore float32 `json:"relevance_score"`
}

func runAsk(cmd *cobra.Command, fileID, question string, noStream, noSources bool) error {
	cached, err := LoadCachedSession(fileID)
	if err != nil {
		return err
	}
	if cached != nil && cached.Stateless && cached.Payload == nil {
		return domain.ErrSessionDataMissing
	}

	req := chatRequest{
		FileID:  fileID,
		Message: question,
	}
	if cached != nil {
		req.History = cached.History
		if cached.Stateless {
			req.Session = cached.Payload
		}
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var answer string
	var sources []sourceCard
	if noStream {
		answer, sources, err = askOnce(api, req)
	} else {
		answer, sources, err = askStreaming(api, req)
	}
	if err != nil {
		return err
	}

	if !noSources && len(sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range sources {
			fmt.Printf("  [page %d] (%.2f) %s\n", src.Page, src.RelevanceScore, src.Excerpt)
		}
	}

	if cached != nil {
		cached.History = append(cached.History,
			HistoryTurn{Role: "user", Content: question},
			HistoryTurn{Role: "assistant", Content: answer},
		)
		if err := SaveCachedSession(cached); err != nil {
			return err
		}
	}

	return nil
}

func askOnce(api *APIClient, req chatRequest) (string, []sourceCard, error) {
	resp, err := api.Post("/chat/message", req)
	if err != nil {
		return "", nil, err
	}

	var result struct {
		Message string       `json:"message"`
		Sources []sourceCard `json:"sources"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", nil, fmt.Errorf("failed to parse chat response: %w", err)
	}

	fmt.Println(result.Message)
	return result.Message, result.Sources, nil
}

// askStreaming reads the SSE answer stream, printing content tokens as they
// arrive. The stream ends with a "[DONE]" frame.
func askStreaming(api *APIClient, req chatRequest) (string, []sourceCard, error) {
	body, err := api.PostSSE("/chat/stream", req)
	if err != nil {
		return "", nil, err
	}
	defer body.Close()

	var answer strings.Builder
	var sources []sourceCard

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			continue
		}

		switch frame.Type {
		case "content":
			fmt.Print(frame.Content)
			answer.WriteString(frame.Content)
		case "sources":
			sources = frame.Sources
		case "error":
			fmt.Println()
			return "", nil, fmt.Errorf("server error (%s): %s", frame.Kind, frame.Message)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("stream read failed: %w", err)
	}

	fmt.Println()
	return answer.String(), sources, nil
}
