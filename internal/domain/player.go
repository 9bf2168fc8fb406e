package domain

type MoveStatus byte

const (
	NoneMove = MoveStatus(iota)
	Placed
	Ended
	Disconnect
)

// Move is what one player's loop hands to the other through the shared
// channel.
type Move struct {
	Stone   GoStone
	Verdict Verdict
	Status  MoveStatus
}

type Player struct {
	uuid      string
	gameUuid  string
	playerCli Client
	color     Color
	ch        chan Move
	done      <-chan struct{}
}

// NewPlayer binds a client to one side of a match. ch is shared by both
// sides; done is closed when the match is aborted.
func NewPlayer(gameUuid string, cli Client, color Color, ch chan Move, done <-chan struct{}) Player {
	return Player{
		uuid:      cli.Uuid(),
		gameUuid:  gameUuid,
		playerCli: cli,
		color:     color,
		ch:        ch,
		done:      done,
	}
}

func (p Player) Uuid() string {
	return p.uuid
}

func (p Player) GameUuid() string {
	return p.gameUuid
}

func (p Player) SendMessage(msg Message) error {
	return p.playerCli.WriteMessage(msg)
}

func (p Player) ReceiveMessage() (Message, error) {
	return p.playerCli.ReadMessage()
}

func (p Player) Color() Color {
	return p.color
}

func (p Player) GetEnemyMove() <-chan Move {
	return p.ch
}

func (p Player) Aborted() <-chan struct{} {
	return p.done
}

// MakeMove hands the move to the opponent's loop, giving up if the match is
// aborted first.
func (p Player) MakeMove(move Move) bool {
	select {
	case p.ch <- move:
		return true
	case <-p.done:
		return false
	}
}
