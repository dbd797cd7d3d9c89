// Command rpsctl is a terminal client for the rock paper scissors
// server. It can join a room and play interactively, or watch the
// room directory stream.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "rpsctl",
		Usage: "terminal client for the rock paper scissors server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Value: "ws://localhost:8080",
				Usage: "websocket base URL of the server",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "join",
				Usage:     "join a room and play from the terminal",
				ArgsUsage: "<room_id>",
				Action:    runJoin,
			},
			{
				Name:   "watch",
				Usage:  "stream the live room directory",
				Action: runWatch,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "rpsctl: %v\n", err)
		os.Exit(1)
	}
}

func runJoin(ctx context.Context, cmd *cli.Command) error {
	roomID := cmd.Args().First()
	if roomID == "" {
		return fmt.Errorf("usage: rpsctl join <room_id>")
	}

	url := strings.TrimSuffix(cmd.String("server"), "/") + "/join/" + roomID
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()

	fmt.Printf("connected to %s\n", url)
	fmt.Println("commands: start | rock | paper | scissors | quit (anything else is sent as chat)")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			printEvent(data)
		}
	}()

	input := make(chan string)
	go func() {
		defer close(input)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case <-done:
			fmt.Println("connection closed by server")
			return nil
		case line, ok := <-input:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "quit" {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, encodeLine(line)); err != nil {
				return fmt.Errorf("write failed: %w", err)
			}
		}
	}
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	url := strings.TrimSuffix(cmd.String("server"), "/") + "/rooms/stream"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()

	fmt.Printf("watching %s\n", url)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}
		printDirectory(data)
	}
}

// encodeLine maps terminal input to the wire protocol. Game keywords
// become structured commands; anything else is sent verbatim so the
// server relays it as chat.
func encodeLine(line string) []byte {
	switch strings.ToLower(line) {
	case "start":
		data, _ := json.Marshal(map[string]string{"action": "start"})
		return data
	case "rock", "paper", "scissors":
		data, _ := json.Marshal(map[string]string{"action": "move", "choice": strings.ToLower(line)})
		return data
	}
	return []byte(line)
}

func printEvent(data []byte) {
	var event map[string]interface{}
	if err := json.Unmarshal(data, &event); err != nil {
		// Chat from another member.
		fmt.Printf("chat> %s\n", data)
		return
	}

	switch event["event"] {
	case "game_started":
		players, _ := event["players"].([]interface{})
		fmt.Printf("game started with %d players\n", len(players))
	case "round_result":
		if event["tie"] == true {
			fmt.Println("round ended in a tie")
			return
		}
		winners, _ := event["winners"].([]interface{})
		fmt.Printf("winners: %v\n", winners)
	case "rematch":
		next, _ := event["next_players"].([]interface{})
		fmt.Printf("rematch (%v) among %d players\n", event["reason"], len(next))
	case "game_aborted":
		fmt.Printf("game aborted: %v\n", event["message"])
	case "error":
		fmt.Printf("error: %v\n", event["message"])
	default:
		if _, ok := event["success"]; ok {
			if event["message"] != nil {
				fmt.Printf("%v\n", event["message"])
			} else if event["success"] == true {
				fmt.Printf("joined, your id is %v\n", event["my_id"])
			}
			return
		}
		fmt.Printf("%s\n", data)
	}
}

func printDirectory(data []byte) {
	var snapshot struct {
		Rooms []struct {
			RoomID      string `json:"room_id"`
			ClientCount int    `json:"client_count"`
		} `json:"rooms"`
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		fmt.Printf("%s\n", data)
		return
	}

	if len(snapshot.Rooms) == 0 {
		fmt.Println("no open rooms")
		return
	}
	for _, r := range snapshot.Rooms {
		fmt.Printf("  %-20s %d connected\n", r.RoomID, r.ClientCount)
	}
	fmt.Println("---")
}
