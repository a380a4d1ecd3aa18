package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/arkham-companion/internal/model"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <session>",
		Short: "Stream events from a game session",
		Long: `Connect to the session's event stream and print events as they arrive.

Events include:
  - connected: The stream is open
  - phase-changed: The session moved to another phase
  - player-updated: A player joined or changed
  - session-closed: The host closed the session

The stream ends when the session is closed. Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(sessionToken string, jsonOutput bool) error {
	req, err := client.newRequest(http.MethodGet, sessionPath(sessionToken)+"/events", nil)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	req = req.WithContext(ctx)

	// The stream stays open, so no client timeout
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
	}

	if !jsonOutput {
		fmt.Printf("Listening to session %s\n", sessionToken)
	}

	// Parse SSE stream
	scanner := bufio.NewScanner(resp.Body)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "event: ") {
			currentEvent = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		} else if line == "" {
			// End of event
			if currentEvent != "" {
				data := strings.Join(dataLines, "\n")
				printEvent(currentEvent, data, jsonOutput)
				if currentEvent == string(model.EventSessionClosed) {
					break
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil {
		// Context cancellation is expected
		if ctx.Err() != nil {
			if !jsonOutput {
				fmt.Println("\nDisconnected")
			}
			return nil
		}
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

func printEvent(event, data string, jsonOutput bool) {
	now := time.Now()

	// Payloads are wrapped as {"data": ...}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	payload := json.RawMessage(data)
	if err := json.Unmarshal([]byte(data), &envelope); err == nil && envelope.Data != nil {
		payload = envelope.Data
	}

	if jsonOutput {
		line, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: string(compact(payload))})
		fmt.Println(string(line))
		return
	}

	display := string(compact(payload))
	if len(display) > 120 {
		display = display[:120] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", now.Format("15:04:05"), event, display)
}

func compact(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return bytes.ReplaceAll(raw, []byte("\n"), []byte(" "))
	}
	return buf.Bytes()
}
