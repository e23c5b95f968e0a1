package game

import "errors"

// Input validation failures. They are reported to the acting connection and
// never change table state.
var (
	ErrAlreadyStarted    = errors.New("game already started")
	ErrNotYourTurn       = errors.New("not your move")
	ErrCardNotHeld       = errors.New("you don't have that card")
	ErrIllegalLead       = errors.New("point cards cannot lead before points are opened")
	ErrMustFollowSuit    = errors.New("wrong suit")
	ErrNotWaitingForPass = errors.New("cannot pass cards now")
	ErrWrongCardCount    = errors.New("should be 3 cards")
	ErrUnknownCard       = errors.New("unknown card")
	ErrNotSeated         = errors.New("player is not seated at this table")
	ErrTableClosed       = errors.New("table closed")
)
