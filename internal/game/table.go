package game

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/calvinwijaya/hearts-be/internal/log"
	"github.com/google/uuid"
)

type TableStatus string

const (
	Lobby    TableStatus = "lobby"    // Accepting joins
	Dealing  TableStatus = "dealing"  // Cards are being dealt
	Passing  TableStatus = "passing"  // Waiting for pass cards
	Playing  TableStatus = "playing"  // Trick loop
	RoundEnd TableStatus = "roundEnd" // Last trick taken, redeal pending
	Closed   TableStatus = "closed"   // Torn down
)

// MaxPlayers is the number of seats at a table.
const MaxPlayers = 4

const defaultTurnTimeout = 7 * time.Second

// Directory keeps the player to table reverse lookup.
type Directory interface {
	Bind(playerID int64, t *Table)
	Unbind(playerID int64, t *Table)
	// Vacate unbinds a player of a table that closed.
	Vacate(playerID int64, t *Table)
}

// Options configures a table. Zero PassGrace or TrickPause resolve those
// phases without waiting.
type Options struct {
	TurnTimeout time.Duration
	PassGrace   time.Duration
	TrickPause  time.Duration

	Notifier   Notifier
	Directory  Directory
	OnRoundEnd func(RoundResult)

	// Connected reports whether an identity has a live connection. The pool
	// forgets offline players whose table closes. Nil treats everyone as
	// connected.
	Connected func(playerID int64) bool
}

type passDirection struct {
	offset int
	name   string
}

// Pass direction by round number mod 4.
var passDirections = [4]passDirection{
	{offset: 3, name: "left"},
	{offset: 1, name: "right"},
	{offset: 2, name: "across"},
	{offset: 0, name: ""},
}

// ChatMessage is one entry of the table chat log.
type ChatMessage struct {
	Player    int64     `json:"player"`
	Text      string    `json:"text"`
	PrivateTo *int64    `json:"private_to,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Table is the per-table state machine. Every mutation, including timer
// callbacks, runs under mu.
type Table struct {
	ID string

	mu             sync.Mutex
	players        []*Player // turn order, rotated so the leader is first
	status         TableStatus
	roundNumber    int
	trick          []Card
	scoreOpened    bool
	waitingForPass bool
	settling       bool
	votes          map[int64]struct{}
	chat           []ChatMessage
	createdAt      time.Time
	startedAt      time.Time

	turnTimer  *time.Timer
	turnGen    uint64
	phaseTimer *time.Timer

	opts     Options
	notifier Notifier
	newDeck  func() (*Deck, error)
}

// NewTable creates an empty table in the lobby.
func NewTable(opts Options) *Table {
	if opts.TurnTimeout <= 0 {
		opts.TurnTimeout = defaultTurnTimeout
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Table{
		ID:        uuid.New().String(),
		status:    Lobby,
		trick:     make([]Card, 0, MaxPlayers),
		votes:     make(map[int64]struct{}),
		createdAt: time.Now(),
		opts:      opts,
		notifier:  notifier,
		newDeck:   NewShuffledDeck,
	}
}

// Started reports whether membership is fixed. Closed tables count as started.
func (t *Table) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.startedAt.IsZero() || t.status == Closed
}

func (t *Table) Status() TableStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Summary is the public lobby view of a table.
type Summary struct {
	ID        string      `json:"id"`
	Status    TableStatus `json:"status"`
	Players   int         `json:"playerCount"`
	Round     int         `json:"roundNumber"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (t *Table) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Summary{
		ID:        t.ID,
		Status:    t.status,
		Players:   len(t.players),
		Round:     t.roundNumber,
		CreatedAt: t.createdAt,
	}
}

// Join seats the player. The fourth join starts the game.
func (t *Table) Join(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.join(p)
}

func (t *Table) join(p *Player) error {
	if t.status == Closed {
		return ErrTableClosed
	}
	if !t.startedAt.IsZero() || len(t.players) >= MaxPlayers {
		return ErrAlreadyStarted
	}
	if t.seatOf(p) >= 0 {
		t.sendState(p)
		return nil
	}

	t.players = append(t.players, p)
	if !p.IsBot && t.opts.Directory != nil {
		t.opts.Directory.Bind(p.ID, t)
	}
	log.Debug("table %s: player %d joined (%d/%d)", t.ID, p.ID, len(t.players), MaxPlayers)

	t.broadcast(EventJoined, p.View())
	t.broadcastPlayers()
	t.sendState(p)

	if len(t.players) == MaxPlayers {
		t.start()
	}
	return nil
}

// Leave removes the player before the start. Afterwards the seat is kept
// and switched to auto-play.
func (t *Table) Leave(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat := t.seatOf(p)
	if seat < 0 {
		return ErrNotSeated
	}

	if t.startedAt.IsZero() {
		t.players = append(t.players[:seat], t.players[seat+1:]...)
		delete(t.votes, p.ID)
		if t.opts.Directory != nil {
			t.opts.Directory.Unbind(p.ID, t)
		}
	} else {
		p.AutoPlay = true
	}
	log.Debug("table %s: player %d left", t.ID, p.ID)

	t.broadcast(EventLeft, p.View())
	t.broadcastPlayers()

	if !t.startedAt.IsZero() {
		t.handOver(p)
	}
	return nil
}

// Depart cuts a started seat loose from its identity, which moves on to
// another table. The seat stays in the game on auto-play and stops
// receiving events.
func (t *Table) Depart(p *Player) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.startedAt.IsZero() || t.seatOf(p) < 0 || p.departed {
		return
	}
	p.departed = true
	log.Debug("table %s: player %d departed", t.ID, p.ID)
	if !p.AutoPlay {
		p.AutoPlay = true
		t.broadcastPlayers()
		t.handOver(p)
	}
}

// handOver follows a seat switching to auto-play: the table closes when no
// human is left, otherwise a seat on the clock moves at once.
func (t *Table) handOver(p *Player) {
	if t.status == Closed {
		return
	}
	if t.allAuto() {
		log.Info("table %s: no human players left, closing", t.ID)
		t.close()
		return
	}
	if t.status == Playing && !t.settling && t.toAct() == p {
		t.advance()
	}
}

// Rejoin hands a started seat back to its human owner.
func (t *Table) Rejoin(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == Closed {
		return ErrTableClosed
	}
	if t.seatOf(p) < 0 {
		return ErrNotSeated
	}
	if p.departed {
		return ErrNotSeated
	}
	if !p.IsBot {
		p.AutoPlay = false
	}
	t.broadcastPlayers()
	t.sendState(p)
	return nil
}

// VoteToStart records a vote. Once every seated player voted, empty seats are
// filled with bots and the game starts.
func (t *Table) VoteToStart(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == Closed {
		return ErrTableClosed
	}
	if !t.startedAt.IsZero() {
		return ErrAlreadyStarted
	}
	if t.seatOf(p) < 0 {
		return ErrNotSeated
	}
	t.votes[p.ID] = struct{}{}

	if len(t.players) == 0 {
		return nil
	}
	for _, seated := range t.players {
		if _, ok := t.votes[seated.ID]; !ok {
			return nil
		}
	}

	log.Info("table %s: vote passed with %d players, adding bots", t.ID, len(t.players))
	for len(t.players) < MaxPlayers && t.startedAt.IsZero() {
		if err := t.join(NewBot()); err != nil {
			return err
		}
	}
	if t.startedAt.IsZero() {
		t.start()
	}
	return nil
}

// PlayerMove plays a card for the player on the clock.
func (t *Table) PlayerMove(p *Player, c Card) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != Playing || t.settling || t.toAct() != p {
		return ErrNotYourTurn
	}
	if err := t.move(c); err != nil {
		return err
	}
	t.advance()
	return nil
}

// PassCards stages three cards from the player's hand.
func (t *Table) PassCards(p *Player, cards []Card) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.waitingForPass {
		return ErrNotWaitingForPass
	}
	if t.seatOf(p) < 0 {
		return ErrNotSeated
	}
	if len(cards) != 3 {
		return ErrWrongCardCount
	}
	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if seen[c] || indexOf(p.Hand, c) < 0 {
			return ErrCardNotHeld
		}
		seen[c] = true
	}
	for _, c := range cards {
		p.removeFromHand(c)
		p.PassCards = append(p.PassCards, c)
	}
	return nil
}

// Chat records a message and delivers it, privately when privateTo is set.
func (t *Table) Chat(p *Player, text string, privateTo *int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seatOf(p) < 0 {
		return ErrNotSeated
	}
	msg := ChatMessage{Player: p.ID, Text: text, PrivateTo: privateTo, CreatedAt: time.Now()}

	if privateTo == nil {
		t.chat = append(t.chat, msg)
		t.broadcast(EventChat, msg)
		return nil
	}

	target := t.playerByID(*privateTo)
	if target == nil {
		return ErrNotSeated
	}
	t.chat = append(t.chat, msg)
	t.notify(target, EventChat, msg)
	if target != p {
		t.notify(p, EventChat, msg)
	}
	return nil
}

// SendState sends the player a private snapshot.
func (t *Table) SendState(p *Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seatOf(p) < 0 {
		return ErrNotSeated
	}
	t.sendState(p)
	return nil
}

// Close stops the table's timers and releases its players.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.close()
}

func (t *Table) start() {
	t.startedAt = time.Now()
	log.Info("table %s: starting with %d players", t.ID, len(t.players))
	for _, p := range t.players {
		t.sendState(p)
	}
	if err := t.deal(); err != nil {
		t.fail(err)
		return
	}
	t.advance()
}

// deal starts a new round. It leaves the table either in Passing, waiting
// for the grace timer, or in Playing; callers follow up with advance.
func (t *Table) deal() error {
	t.status = Dealing
	t.scoreOpened = false
	t.trick = t.trick[:0]

	t.applyShootTheMoon()

	deck, err := t.newDeck()
	if err != nil {
		return err
	}
	if need := len(t.players) * HandSize; deck.RemainingCards() < need {
		return fmt.Errorf("deal: deck holds %d cards, need %d", deck.RemainingCards(), need)
	}
	for _, p := range t.players {
		hand, ok := deck.Draw(HandSize)
		if !ok {
			panic("game: deck exhausted during deal")
		}
		p.Hand = hand
		p.PassCards = nil
		t.notify(p, EventHand, map[string]any{"hand": SortHand(p.Hand)})
		p.Scores = append(p.Scores, 0)
	}
	t.rotateToTwoOfClubs()

	dir := passDirections[t.roundNumber%4]
	if dir.offset == 0 {
		t.startPlay()
		return nil
	}

	t.beginPassing(dir)
	if t.opts.PassGrace > 0 {
		t.schedule(t.opts.PassGrace, func() {
			t.finishPassing(dir)
			t.startPlay()
			t.advance()
		})
		return nil
	}
	t.finishPassing(dir)
	t.startPlay()
	return nil
}

// applyShootTheMoon rewrites the previous round's entries when one player
// took every point.
func (t *Table) applyShootTheMoon() {
	var shooter *Player
	for _, p := range t.players {
		if len(p.Scores) > 0 && p.lastScore() == RoundPoints {
			shooter = p
			break
		}
	}
	if shooter == nil {
		return
	}
	for _, p := range t.players {
		if len(p.Scores) == 0 {
			continue
		}
		if p == shooter {
			p.Scores[len(p.Scores)-1] = 0
		} else {
			p.Scores[len(p.Scores)-1] = RoundPoints
		}
	}
	log.Info("table %s: player %d shot the moon", t.ID, shooter.ID)
	t.broadcast(EventShootTheMoon, map[string]any{"player": shooter.ID})
}

func (t *Table) rotateToTwoOfClubs() {
	for i, p := range t.players {
		if indexOf(p.Hand, TwoOfClubs) >= 0 {
			if i != 0 {
				t.rotate(i)
				t.broadcastPlayers()
			}
			return
		}
	}
}

func (t *Table) beginPassing(dir passDirection) {
	t.status = Passing
	t.waitingForPass = true
	for i, p := range t.players {
		p.PassCards = nil
		t.notify(p, EventWaitingPass, map[string]any{
			"to":    t.passTarget(i, dir).ID,
			"where": dir.name,
		})
	}
}

func (t *Table) passTarget(seat int, dir passDirection) *Player {
	return t.players[(seat+dir.offset)%len(t.players)]
}

// finishPassing forces every staged set to exactly three cards and hands
// them over.
func (t *Table) finishPassing(dir passDirection) {
	for _, p := range t.players {
		for len(p.PassCards) < 3 {
			c := passFallback(p.Hand)
			p.removeFromHand(c)
			p.PassCards = append(p.PassCards, c)
		}
		for len(p.PassCards) > 3 {
			p.Hand = append(p.Hand, p.PassCards[0])
			p.PassCards = p.PassCards[1:]
		}
	}

	for i, p := range t.players {
		to := t.passTarget(i, dir)
		to.Hand = append(to.Hand, p.PassCards...)
		t.notify(p, EventPass, map[string]any{
			"to":    to.ID,
			"where": dir.name,
			"cards": p.PassCards,
		})
		t.notify(to, EventGot, map[string]any{
			"from":  p.ID,
			"where": dir.name,
			"cards": p.PassCards,
		})
	}
	for _, p := range t.players {
		p.PassCards = nil
		t.notify(p, EventHand, map[string]any{"hand": SortHand(p.Hand)})
	}
	t.waitingForPass = false
}

func (t *Table) startPlay() {
	// Passing may have moved the two of clubs.
	t.rotateToTwoOfClubs()
	t.roundNumber++
	t.status = Playing
}

// move validates and plays a card for the seat on the clock.
func (t *Table) move(c Card) error {
	mover := t.toAct()
	if indexOf(mover.Hand, c) < 0 {
		return ErrCardNotHeld
	}
	if len(t.trick) == 0 {
		if c.Points() > 0 && !t.scoreOpened && hasNonPointCard(mover.Hand) {
			return ErrIllegalLead
		}
	} else {
		led := t.trick[0].Suit()
		if c.Suit() != led && hasSuit(mover.Hand, led) {
			return ErrMustFollowSuit
		}
	}

	mover.removeFromHand(c)
	t.trick = append(t.trick, c)
	if len(t.trick) > MaxPlayers {
		panic("game: trick holds more than four cards")
	}
	t.notify(mover, EventHand, map[string]any{"hand": SortHand(mover.Hand)})
	t.broadcastTable()

	if len(t.trick) == MaxPlayers {
		t.completeTrick()
	}
	return nil
}

func (t *Table) completeTrick() {
	points := TrickPoints(t.trick)
	if points > 0 {
		t.scoreOpened = true
	}
	winner := TrickWinner(t.trick)
	t.broadcast(EventTook, map[string]any{
		"took":  t.players[winner].View(),
		"score": points,
	})

	if t.opts.TrickPause > 0 {
		t.settling = true
		t.schedule(t.opts.TrickPause, func() {
			t.settleTrick(winner, points)
			t.advance()
		})
		return
	}
	t.settleTrick(winner, points)
}

func (t *Table) settleTrick(winner, points int) {
	t.settling = false
	w := t.players[winner]
	w.Scores[len(w.Scores)-1] += points
	t.rotate(winner)
	t.broadcastPlayers()
	t.trick = t.trick[:0]
	t.broadcastTable()

	for _, p := range t.players {
		if len(p.Hand) > 0 {
			return
		}
	}
	t.endRound()
}

func (t *Table) endRound() {
	t.status = RoundEnd
	result := t.roundResult()
	log.Info("table %s: round %d finished", t.ID, result.Round)
	if t.opts.OnRoundEnd != nil {
		t.opts.OnRoundEnd(result)
	}
	if err := t.deal(); err != nil {
		t.fail(err)
	}
}

// advance hands the turn to the next seat: auto-played seats move at once,
// a human seat gets a fresh turn timer.
func (t *Table) advance() {
	t.cancelTurnTimer()
	for t.status == Playing && !t.settling {
		if t.allAuto() {
			log.Info("table %s: every seat is auto-played, closing", t.ID)
			t.close()
			return
		}
		if !t.toAct().AutoPlay {
			t.armTurnTimer()
			return
		}
		t.autoMove()
	}
}

// autoMove plays the heuristic card for the seat on the clock.
func (t *Table) autoMove() {
	mover := t.toAct()
	c := chooseAutoMove(mover.Hand, t.trick)
	if err := t.move(c); err != nil {
		panic("game: auto move rejected: " + err.Error())
	}
}

func (t *Table) armTurnTimer() {
	t.turnGen++
	gen := t.turnGen
	t.turnTimer = time.AfterFunc(t.opts.TurnTimeout, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if gen != t.turnGen || t.status != Playing || t.settling {
			return
		}
		t.turnTimer = nil
		log.Debug("table %s: turn timeout for player %d", t.ID, t.toAct().ID)
		t.autoMove()
		t.advance()
	})
}

// cancelTurnTimer invalidates any armed timer, including one whose callback
// is already waiting for the lock.
func (t *Table) cancelTurnTimer() {
	t.turnGen++
	if t.turnTimer != nil {
		t.turnTimer.Stop()
		t.turnTimer = nil
	}
}

func (t *Table) schedule(d time.Duration, fn func()) {
	t.phaseTimer = time.AfterFunc(d, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if t.status == Closed {
			return
		}
		t.phaseTimer = nil
		fn()
	})
}

func (t *Table) close() {
	if t.status == Closed {
		return
	}
	t.status = Closed
	t.settling = false
	t.waitingForPass = false
	t.cancelTurnTimer()
	if t.phaseTimer != nil {
		t.phaseTimer.Stop()
		t.phaseTimer = nil
	}
	if t.opts.Directory != nil {
		for _, p := range t.players {
			if !p.IsBot && !p.departed {
				t.opts.Directory.Vacate(p.ID, t)
			}
		}
	}
}

func (t *Table) fail(err error) {
	log.Error("table %s: %v", t.ID, err)
	t.close()
}

// RoundResult reports the points of a finished round after the
// shoot-the-moon inversion.
type RoundResult struct {
	TableID string
	Round   int
	EndedAt time.Time
	Entries []RoundEntry
}

type RoundEntry struct {
	PlayerID int64
	IsBot    bool
	Points   int
	Place    int
}

func (t *Table) roundResult() RoundResult {
	entries := make([]RoundEntry, len(t.players))
	moon := false
	for i, p := range t.players {
		entries[i] = RoundEntry{PlayerID: p.ID, IsBot: p.IsBot, Points: p.lastScore()}
		if entries[i].Points == RoundPoints {
			moon = true
		}
	}
	if moon {
		for i := range entries {
			if entries[i].Points == RoundPoints {
				entries[i].Points = 0
			} else {
				entries[i].Points = RoundPoints
			}
		}
	}

	for i := range entries {
		place := 1
		for j := range entries {
			if entries[j].Points < entries[i].Points {
				place++
			}
		}
		entries[i].Place = place
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Place < entries[j].Place })

	return RoundResult{
		TableID: t.ID,
		Round:   t.roundNumber - 1,
		EndedAt: time.Now(),
		Entries: entries,
	}
}

func (t *Table) toAct() *Player {
	return t.players[len(t.trick)]
}

func (t *Table) rotate(k int) {
	rotated := make([]*Player, 0, len(t.players))
	rotated = append(rotated, t.players[k:]...)
	rotated = append(rotated, t.players[:k]...)
	t.players = rotated
}

func (t *Table) seatOf(p *Player) int {
	for i, seated := range t.players {
		if seated == p {
			return i
		}
	}
	return -1
}

func (t *Table) playerByID(id int64) *Player {
	for _, p := range t.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (t *Table) allAuto() bool {
	for _, p := range t.players {
		if !p.AutoPlay {
			return false
		}
	}
	return true
}
