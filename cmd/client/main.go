package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/kiryu-dev/omok/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var errSwitchServer = errors.New("switch server")

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	addr := flag.String("addr", "localhost:8080", "game server address")
	clientUuid := flag.String("id", "", "client id, reuse it to resume an unfinished game")
	flag.Parse()
	if *clientUuid == "" {
		*clientUuid = uuid.NewString()
	}
	logger.Info("client id", zap.String("id", *clientUuid))

	c := newClient(*clientUuid)
	host := *addr
	for {
		err := c.play(host)
		var switchErr *switchServerError
		if !errors.As(err, &switchErr) {
			if err != nil {
				logger.Fatal("game failed", zap.Error(err))
			}
			return
		}
		host = switchErr.host(host)
		logger.Info("switching to master server", zap.String("host", host))
	}
}

type switchServerError struct {
	masterServer string
}

func (e *switchServerError) Error() string {
	return errSwitchServer.Error() + ": " + e.masterServer
}

// host keeps the port of the current address when the master is given by
// name only.
func (e *switchServerError) host(current string) string {
	if _, _, err := net.SplitHostPort(e.masterServer); err == nil {
		return e.masterServer
	}
	if _, port, err := net.SplitHostPort(current); err == nil {
		return net.JoinHostPort(e.masterServer, port)
	}
	return e.masterServer
}

type client struct {
	uuid       string
	conn       *websocket.Conn
	scanner    *bufio.Scanner
	board      [domain.BoardSize * domain.BoardSize]domain.Color
	color      domain.Color
	restricted domain.Color
}

func newClient(clientUuid string) *client {
	return &client{
		uuid:    clientUuid,
		scanner: bufio.NewScanner(os.Stdin),
	}
}

func (c *client) play(host string) error {
	u := url.URL{Scheme: "ws", Host: host, Path: "/game"}
	header := http.Header{}
	header.Set(domain.ClientUuidHeader, c.uuid)
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		return errors.WithMessage(err, "dial")
	}
	defer func() {
		_ = conn.Close()
	}()
	c.conn = conn
	fmt.Println("Waiting for an opponent...")
	return c.handleActions()
}

func (c *client) handleActions() error {
	for {
		msg, err := c.readMessage()
		if err != nil {
			return errors.WithMessage(err, "read message")
		}
		switch msg.Type {
		case domain.StartGame:
			if err := c.handleStartGameAction(msg); err != nil {
				return errors.WithMessage(err, "handle start game action")
			}
		case domain.RequestMove:
			if err := c.handleRequestMoveAction(msg); err != nil {
				return errors.WithMessage(err, "handle request move action")
			}
		case domain.PlayerMove:
			isGameFinished, err := c.handlePlayerMoveAction(msg)
			if err != nil {
				return errors.WithMessage(err, "handle player move action")
			}
			if isGameFinished {
				return nil
			}
		case domain.Walkover:
			v, err := utils.DecodePayload[domain.WalkoverPayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "decode walkover payload")
			}
			fmt.Println(v.GameResult)
			return nil
		case domain.SwitchServer:
			v, err := utils.DecodePayload[domain.SwitchServerPayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "decode switch server payload")
			}
			return &switchServerError{masterServer: v.MasterServer}
		}
	}
}

func (c *client) handleStartGameAction(msg domain.Message) error {
	v, err := utils.DecodePayload[domain.StartGamePayload](msg.Payload)
	if err != nil {
		return errors.WithMessage(err, "decode start game payload")
	}
	c.color = v.Color
	c.restricted = v.Restricted
	c.board = [domain.BoardSize * domain.BoardSize]domain.Color{}
	for _, record := range v.Moves {
		stone, err := record.Stone()
		if err != nil {
			return errors.WithMessage(err, "restore move")
		}
		c.board[stone.Coordinate().BoardIndex()] = stone.Color()
	}
	c.printBoard()
	fmt.Printf("You play %s.", c.color)
	if c.restricted != domain.NoColor {
		fmt.Printf(" Forbidden moves apply to %s.", c.restricted)
	}
	fmt.Println()
	return nil
}

func (c *client) handleRequestMoveAction(msg domain.Message) error {
	if msg.Payload != nil {
		v, err := utils.DecodePayload[domain.RequestMovePayload](msg.Payload)
		if err == nil && v.Reason != "" {
			fmt.Println("Move rejected: " + v.Reason)
		}
	}
	coordinate, err := c.readCoordinate()
	if err != nil {
		return errors.WithMessage(err, "read coordinate")
	}
	return c.writeMessage(domain.Message{
		Type: domain.PlayerMove,
		Payload: domain.PlayerMovePayload{
			Color: c.color,
			X:     coordinate.X(),
			Y:     coordinate.Y(),
		},
	})
}

func (c *client) handlePlayerMoveAction(msg domain.Message) (isGameFinished bool, err error) {
	v, err := utils.DecodePayload[domain.PlayerMovePayload](msg.Payload)
	if err != nil {
		return false, errors.WithMessage(err, "decode player move payload")
	}
	coordinate, err := domain.NewCoordinate(v.X, v.Y)
	if err != nil {
		return false, errors.WithMessage(err, "player move coordinate")
	}
	c.board[coordinate.BoardIndex()] = v.Color
	c.printBoard()
	fmt.Printf("%s played %s\n", v.Color, coordinate)
	if v.GameResult != nil {
		fmt.Println(*v.GameResult)
		return true, nil
	}
	if v.IsMoveRequested {
		if err := c.handleRequestMoveAction(domain.Message{Type: domain.RequestMove}); err != nil {
			return false, errors.WithMessage(err, "handle request move action")
		}
	}
	return false, nil
}

// readCoordinate prompts until the input parses to a coordinate on the board.
func (c *client) readCoordinate() (domain.Coordinate, error) {
	for {
		fmt.Printf("Your move (%s), e.g. 8,8 or H8: ", c.color)
		if ok := c.scanner.Scan(); !ok {
			if err := c.scanner.Err(); err != nil {
				return domain.Coordinate{}, err
			}
			return domain.Coordinate{}, domain.ErrConnectionClosed
		}
		coordinate, err := domain.ParseCoordinate(c.scanner.Text())
		if err == nil {
			return coordinate, nil
		}
		fmt.Println(err.Error())
	}
}

func (c *client) readMessage() (domain.Message, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return domain.Message{}, err
	}
	var msg domain.Message
	if err := jsoniter.Unmarshal(data, &msg); err != nil {
		return domain.Message{}, errors.WithMessage(err, "unmarshal message")
	}
	return msg, nil
}

func (c *client) writeMessage(msg domain.Message) error {
	data, err := jsoniter.Marshal(msg)
	if err != nil {
		return errors.WithMessage(err, "marshal message")
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.WithMessage(err, "write message")
	}
	return nil
}

func (c *client) printBoard() {
	fmt.Printf("\033[H\033[J")
	for i, color := range c.board {
		coordinate, _ := domain.CoordinateFromIndex(i)
		if coordinate.X() == 1 {
			fmt.Printf("%2d ", coordinate.Y())
		}
		fmt.Printf("%c ", stoneSymbol(color))
		if coordinate.X() == domain.BoardSize {
			fmt.Println()
		}
	}
	fmt.Print("   ")
	for x := 0; x < domain.BoardSize; x++ {
		fmt.Printf("%c ", 'A'+x)
	}
	fmt.Println()
}

func stoneSymbol(color domain.Color) rune {
	switch color {
	case domain.Black:
		return '●'
	case domain.White:
		return '○'
	default:
		return '+'
	}
}
