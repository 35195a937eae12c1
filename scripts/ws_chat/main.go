package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	name := flag.String("name", "cli-user", "display name")
	credential := flag.String("credential", "", "identity credential from a previous session")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(v interface{}) {
		if writeErr := wsjson.Write(ctx, conn, v); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	helloPayload, err := json.Marshal(proto.HelloData{Name: *name, Credential: *credential})
	if err != nil {
		return fmt.Errorf("marshal hello: %w", err)
	}
	send(proto.Inbound{Type: proto.InboundTypeHello, Data: helloPayload})

	fmt.Printf("Connected to %s as %s\n", *addr, *name)
	fmt.Println("Type messages (or /commands) and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var out proto.Outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("read: %v", err)
			}
			return
		}
		printOutbound(out)
	}
}

func printOutbound(out proto.Outbound) {
	raw, _ := json.Marshal(out.Data)
	switch out.Type {
	case proto.OutboundTypeAssign:
		var data proto.AssignData
		_ = json.Unmarshal(raw, &data)
		fmt.Printf("* your credential (save it): %s\n", data.Credential)
	case proto.OutboundTypeHistory:
		var data proto.HistoryData
		_ = json.Unmarshal(raw, &data)
		for _, m := range data.Messages {
			printMessage(m)
		}
	case proto.OutboundTypeMessage:
		var m proto.MessageData
		_ = json.Unmarshal(raw, &m)
		printMessage(m)
	case proto.OutboundTypeBanned:
		var data proto.BannedData
		_ = json.Unmarshal(raw, &data)
		fmt.Printf("* you are banned: %s\n", data.Reason)
	case proto.OutboundTypeReload:
		fmt.Println("* server asked clients to reload")
	case proto.OutboundTypeStatus:
		var data proto.StatusData
		_ = json.Unmarshal(raw, &data)
		fmt.Printf("* server status: %s\n", data.Status)
	case proto.OutboundTypeError:
		if out.Error != nil {
			fmt.Printf("! %s: %s\n", out.Error.Code, out.Error.Msg)
		}
	default:
		fmt.Printf("? %s %s\n", out.Type, raw)
	}
}

func printMessage(m proto.MessageData) {
	if m.System {
		fmt.Printf("* [%s] %s\n", m.Name, m.Text)
		return
	}
	fmt.Printf("<%s> %s\n", m.Name, m.Text)
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		payload, err := json.Marshal(proto.ChatData{Text: text})
		if err != nil {
			log.Printf("marshal chat: %v", err)
			continue
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeChat, Data: payload}); err != nil {
			log.Printf("send: %v", err)
			return
		}
	}
}
