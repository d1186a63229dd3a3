package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const usage = `commands:
  create <name>          create a room
  join <code> <name>     join a room
  start | advance        host only
  act <player-id>        night action for your role
  chat <message>         day chat
  accuse <player-id>
  vote [player-id]       empty clears your vote
  leave
  quit`

type packet struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// roomCode remembers the room the server put us in.
var (
	roomCode string
	codeMu   sync.Mutex
)

func currentCode() string {
	codeMu.Lock()
	defer codeMu.Unlock()
	return roomCode
}

func send(c *websocket.Conn, msgType string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.WriteJSON(packet{Type: msgType, Data: raw})
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			var p packet
			if err := c.ReadJSON(&p); err != nil {
				log.Println("Read error:", err)
				return
			}
			if p.Type == "room_joined" {
				var joined struct {
					Code string `json:"code"`
				}
				if json.Unmarshal(p.Data, &joined) == nil {
					codeMu.Lock()
					roomCode = joined.Code
					codeMu.Unlock()
				}
			}
			log.Printf("<- %s %s", p.Type, string(p.Data))
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	log.Println(usage)

	// Write loop
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case text, ok := <-lines:
			if !ok || text == "quit" {
				return
			}
			if err := dispatch(c, text); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}

func dispatch(c *websocket.Conn, text string) error {
	cmd, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimSpace(rest)
	code := currentCode()

	switch cmd {
	case "create":
		return send(c, "create_room", map[string]string{"name": rest})
	case "join":
		joinCode, name, _ := strings.Cut(rest, " ")
		return send(c, "join_room", map[string]string{"code": joinCode, "name": name})
	case "start":
		return send(c, "start_game", map[string]string{"code": code})
	case "advance":
		return send(c, "advance", map[string]string{"code": code})
	case "act":
		return send(c, "night_action", map[string]string{"code": code, "target": rest})
	case "chat":
		return send(c, "day_chat", map[string]string{"code": code, "message": rest})
	case "accuse":
		return send(c, "accuse", map[string]string{"code": code, "target": rest})
	case "vote":
		return send(c, "vote", map[string]string{"code": code, "target": rest})
	case "leave":
		return send(c, "leave_room", map[string]string{"code": code})
	case "":
		return nil
	default:
		log.Println(usage)
		return nil
	}
}
