// Interactive test client for the coupleboard protocol.
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/coupleboard/network"
)

var eventNames = map[uint16]string{
	network.MsgTypeHeartbeat:     "heartbeat",
	network.MsgTypeError:         "error",
	network.MsgTypeRoomCreated:   "room-created",
	network.MsgTypeRoomJoined:    "room-joined",
	network.MsgTypeRoomReady:     "room-ready",
	network.MsgTypeGameStarted:   "game-started",
	network.MsgTypeDiceRolled:    "dice-rolled",
	network.MsgTypePlayerMoved:   "player-moved",
	network.MsgTypeTaskTriggered: "task-triggered",
	network.MsgTypeTaskTimer:     "task-timer",
	network.MsgTypeTaskResolved:  "task-resolved",
	network.MsgTypeTurnChanged:   "turn-changed",
	network.MsgTypeGameWon:       "game-won",
	network.MsgTypeGameReset:     "game-reset",
	network.MsgTypePlayerLeft:    "player-left",
	network.MsgTypeRoomClosed:    "room-closed",
	network.MsgTypeAdminMessage:  "admin-message",
}

// send frames and sends one packet.
func send(c *websocket.Conn, msgID uint16, payload interface{}) error {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
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
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			name := eventNames[msgID]
			if name == "" {
				name = strconv.Itoa(int(msgID))
			}
			log.Printf("<- %s: %s", name, string(data))
		}
	}()

	log.Println("Commands: create [name] | join CODE [name] | start | roll | move N |")
	log.Println("          truth | dare | timer | done | skip | reroll | leave | quit")

	reader := bufio.NewReader(os.Stdin)
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
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				name := "host"
				if len(fields) > 1 {
					name = fields[1]
				}
				err = send(c, network.MsgTypeCreateRoom, network.CreateRoomRequest{Name: name})
			case "join":
				if len(fields) < 2 {
					log.Println("usage: join CODE [name]")
					continue
				}
				name := "guest"
				if len(fields) > 2 {
					name = fields[2]
				}
				err = send(c, network.MsgTypeJoinRoom, network.JoinRoomRequest{RoomID: fields[1], Name: name})
			case "start":
				err = send(c, network.MsgTypeStartGame, nil)
			case "roll":
				err = send(c, network.MsgTypeRollDice, nil)
			case "move":
				if len(fields) < 2 {
					log.Println("usage: move N")
					continue
				}
				steps, convErr := strconv.Atoi(fields[1])
				if convErr != nil {
					log.Println("usage: move N")
					continue
				}
				err = send(c, network.MsgTypeMovePlayer, network.MovePlayerRequest{Steps: steps})
			case "truth", "dare":
				err = send(c, network.MsgTypeSelectTaskCategory, network.SelectCategoryRequest{Category: fields[0]})
			case "timer":
				err = send(c, network.MsgTypeStartTimer, nil)
			case "done":
				err = send(c, network.MsgTypeCompleteTask, nil)
			case "skip":
				err = send(c, network.MsgTypeSkipTask, nil)
			case "reroll":
				err = send(c, network.MsgTypeRerollTask, nil)
			case "leave":
				err = send(c, network.MsgTypeLeaveRoom, nil)
			case "quit":
				return
			default:
				log.Printf("Unknown command %q", fields[0])
				continue
			}

			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
