package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/calvinwijaya/hearts-be/internal/game"
)

const maxChatLength = 500

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadCommand     = errors.New("malformed command")
)

// Command is one decoded client request.
type Command interface {
	command()
}

type JoinCommand struct{}

type LeaveCommand struct{}

type ChatCommand struct {
	Text      string
	PrivateTo *int64
}

type MoveCommand struct {
	Card game.Card
}

type VoteToStartCommand struct{}

type PassCommand struct {
	Cards []game.Card
}

type StateCommand struct{}

func (JoinCommand) command()        {}
func (LeaveCommand) command()       {}
func (ChatCommand) command()        {}
func (MoveCommand) command()        {}
func (VoteToStartCommand) command() {}
func (PassCommand) command()        {}
func (StateCommand) command()       {}

// envelope is the inbound wire format.
type envelope struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	PrivateTo *int64          `json:"private_to,omitempty"`
	Card      json.RawMessage `json:"card,omitempty"`
	Cards     json.RawMessage `json:"cards,omitempty"`
}

// DecodeCommand parses a client frame into its Command.
func DecodeCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCommand, err)
	}

	switch env.Type {
	case "join":
		return JoinCommand{}, nil
	case "leave":
		return LeaveCommand{}, nil
	case "vote_to_start":
		return VoteToStartCommand{}, nil
	case "state":
		return StateCommand{}, nil
	case "chat":
		if env.Text == "" {
			return nil, fmt.Errorf("%w: empty chat message", ErrBadCommand)
		}
		if utf8.RuneCountInString(env.Text) > maxChatLength {
			return nil, fmt.Errorf("%w: chat message too long", ErrBadCommand)
		}
		return ChatCommand{Text: env.Text, PrivateTo: env.PrivateTo}, nil
	case "move":
		if len(env.Card) == 0 {
			return nil, fmt.Errorf("%w: missing card", ErrBadCommand)
		}
		var c game.Card
		if err := json.Unmarshal(env.Card, &c); err != nil {
			return nil, err
		}
		return MoveCommand{Card: c}, nil
	case "pass":
		var cards []game.Card
		if len(env.Cards) > 0 {
			if err := json.Unmarshal(env.Cards, &cards); err != nil {
				return nil, err
			}
		}
		return PassCommand{Cards: cards}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownCommand, env.Type)
	}
}
