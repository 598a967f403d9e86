// apps/go-server/internal/session/session.go
//
// One live room.
// Responsibilities:
//   - Seat up to two players and walk the room through
//     waiting -> countdown -> playing -> over.
//   - Own the GameState exclusively: a single goroutine (Run) applies ticks
//     and player intents one at a time, so the engine never sees concurrent
//     access.
//   - Fan engine events out to every seat; answer rejected intents with an
//     error plus a resync to the actor only.
//   - Close the match on a win or a mid-game disconnect and hand the result
//     to the Recorder.
//
// Notes:
//   - Public methods enqueue a closure on the command channel and wait for
//     the loop to run it. They never touch loop-owned fields directly.
//   - Sink.Send must not block; a slow client must never stall the room.

package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/docombos/docombos/apps/go-server/internal/game"
	"github.com/docombos/docombos/apps/go-server/internal/results"
	"github.com/docombos/docombos/apps/go-server/internal/wire"
)

var (
	ErrClosed     = errors.New("session: closed")
	ErrStarted    = errors.New("session: match already started")
	ErrNotPlaying = errors.New("session: match is not running")
	ErrNotSeated  = errors.New("session: player is not seated")
)

// Phase is the room lifecycle stage.
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseCountdown Phase = "countdown"
	PhasePlaying   Phase = "playing"
	PhaseOver      Phase = "over"
)

const (
	// syncInterval is how often every seat gets a fresh snapshot while playing.
	syncInterval = time.Second
	// idleTimeout closes a room that nobody has joined.
	idleTimeout = 2 * time.Minute
)

// Sink receives the messages addressed to one seat.
type Sink interface {
	Send(m wire.Message)
}

// Publisher mirrors room broadcasts to an external bus.
type Publisher interface {
	Publish(room string, m wire.Message) error
}

// Recorder stores finished matches.
type Recorder interface {
	Record(ctx context.Context, r results.Result) error
}

// Intent is a decoded request attributed to a seat.
type Intent struct {
	Player  game.PlayerID
	Request wire.Request
}

// Info is a point-in-time summary safe to read from any goroutine.
type Info struct {
	ID        string    `json:"id"`
	Phase     Phase     `json:"phase"`
	Players   []string  `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}

type seat struct {
	id       game.PlayerID
	nickname string
	userID   string
	sink     Sink
	ready    bool
}

// Option configures a Session.
type Option func(*Session)

// WithPublisher mirrors every broadcast to p.
func WithPublisher(p Publisher) Option { return func(s *Session) { s.publisher = p } }

// WithRecorder hands finished matches to r.
func WithRecorder(r Recorder) Option { return func(s *Session) { s.recorder = r } }

// WithIdleTimeout closes the room if no player joins within d. Zero disables it.
func WithIdleTimeout(d time.Duration) Option { return func(s *Session) { s.idleAfter = d } }

// WithSyncInterval sets how often snapshots are pushed while playing.
func WithSyncInterval(d time.Duration) Option { return func(s *Session) { s.syncEvery = d } }

// WithOnClose registers fn to run once the loop has exited.
func WithOnClose(fn func(id string)) Option { return func(s *Session) { s.onClose = fn } }

// Session is one room and its actor loop.
type Session struct {
	id        string
	rules     game.Rules
	createdAt time.Time
	cmds      chan func()
	done      chan struct{}

	publisher Publisher
	recorder  Recorder
	onClose   func(id string)
	idleAfter time.Duration
	syncEvery time.Duration

	infoMu sync.RWMutex
	info   Info

	// owned by Run
	state     *game.GameState
	seats     []*seat
	phase     Phase
	hadSeats  bool
	countdown *time.Timer
	idle      *time.Timer
	ticker    *time.Ticker
	startedAt time.Time
	lastTick  time.Time
	lastSync  time.Time
}

// New builds an idle room. Call Run to start its loop.
func New(id string, rules game.Rules, opts ...Option) *Session {
	s := &Session{
		id:        id,
		rules:     rules,
		createdAt: time.Now(),
		cmds:      make(chan func()),
		done:      make(chan struct{}),
		phase:     PhaseWaiting,
		idleAfter: idleTimeout,
		syncEvery: syncInterval,
	}
	for _, o := range opts {
		o(s)
	}
	s.refreshInfo()
	return s
}

func (s *Session) ID() string { return s.id }

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Info returns the latest room summary.
func (s *Session) Info() Info {
	s.infoMu.RLock()
	defer s.infoMu.RUnlock()
	out := s.info
	out.Players = append([]string(nil), s.info.Players...)
	return out
}

// Run processes commands, the countdown and ticks until ctx is cancelled,
// the last seat leaves, or nobody joins within the idle timeout.
func (s *Session) Run(ctx context.Context) {
	if s.idleAfter > 0 && len(s.seats) == 0 {
		s.idle = time.NewTimer(s.idleAfter)
	}
	defer func() {
		s.stopTimers()
		close(s.done)
		if s.onClose != nil {
			s.onClose(s.id)
		}
		log.Info().Str("room", s.id).Msg("room closed")
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-s.cmds:
			fn()
		case <-s.countdownC():
			s.start()
		case now := <-s.tickC():
			s.tick(now)
		case <-s.idleC():
			log.Info().Str("room", s.id).Dur("after", s.idleAfter).Msg("room idle")
			return
		}
		s.refreshInfo()
		if s.hadSeats && len(s.seats) == 0 {
			return
		}
	}
}

// Join seats a player and returns the id assigned to it.
func (s *Session) Join(ctx context.Context, nickname, userID string, sink Sink) (game.PlayerID, error) {
	var id game.PlayerID
	err := s.exec(ctx, func() error {
		var err error
		id, err = s.join(nickname, userID, sink)
		return err
	})
	return id, err
}

// Leave frees the seat of p.
func (s *Session) Leave(ctx context.Context, p game.PlayerID) error {
	return s.exec(ctx, func() error { return s.leave(p) })
}

// Ready marks p as ready. The countdown starts once both seats are ready.
func (s *Session) Ready(ctx context.Context, p game.PlayerID) error {
	return s.exec(ctx, func() error { return s.ready(p) })
}

// Submit applies one intent. A rejected intent has already been answered to
// its actor by the time Submit returns the error.
func (s *Session) Submit(ctx context.Context, in Intent) error {
	return s.exec(ctx, func() error { return s.apply(in) })
}

// exec runs fn on the loop goroutine and waits for its result.
func (s *Session) exec(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	select {
	case s.cmds <- func() { errc <- fn() }:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --------------------------------- loop ------------------------------------

func (s *Session) join(nickname, userID string, sink Sink) (game.PlayerID, error) {
	if s.phase != PhaseWaiting {
		return 0, ErrStarted
	}
	if len(s.seats) >= game.MaxPlayers {
		return 0, game.ErrRoomFull
	}
	id := s.freeID()
	st := &seat{id: id, nickname: nickname, userID: userID, sink: sink}
	s.seats = append(s.seats, st)
	s.hadSeats = true
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}

	log.Info().Str("room", s.id).Int("player", int(id)).Str("nickname", nickname).Msg("player joined")
	s.broadcast(wire.Joined(s.id, id, nickname, s.players()))
	return id, nil
}

func (s *Session) leave(p game.PlayerID) error {
	i := s.seatIndex(p)
	if i < 0 {
		return ErrNotSeated
	}
	gone := s.seats[i]
	s.seats = append(s.seats[:i], s.seats[i+1:]...)
	log.Info().Str("room", s.id).Int("player", int(p)).Str("phase", string(s.phase)).Msg("player left")

	switch s.phase {
	case PhaseCountdown:
		s.stopTimers()
		s.phase = PhaseWaiting
		s.state = nil
		for _, st := range s.seats {
			st.ready = false
		}
		s.broadcast(wire.Disconnected(gone.nickname))
	case PhasePlaying:
		s.broadcast(wire.Disconnected(gone.nickname))
		winner := game.NoOwner
		if len(s.seats) > 0 {
			winner = s.seats[0].id
		}
		s.finish(winner, results.ReasonDisconnect, gone)
	case PhaseWaiting:
		s.broadcast(wire.Disconnected(gone.nickname))
	}
	return nil
}

func (s *Session) ready(p game.PlayerID) error {
	st := s.seat(p)
	if st == nil {
		return ErrNotSeated
	}
	if s.phase != PhaseWaiting {
		return nil
	}
	st.ready = true
	if len(s.seats) < game.MaxPlayers {
		return nil
	}
	for _, other := range s.seats {
		if !other.ready {
			return nil
		}
	}

	s.state = game.New(s.rules)
	for _, other := range s.seats {
		if err := s.state.AddPlayer(other.id, false, other.nickname); err != nil {
			return err
		}
	}
	s.phase = PhaseCountdown
	s.countdown = time.NewTimer(s.rules.StartDelay)
	log.Info().Str("room", s.id).Dur("delay", s.rules.StartDelay).Msg("countdown started")
	s.broadcast(wire.Countdown(int(math.Ceil(s.rules.StartDelay.Seconds()))))
	return nil
}

func (s *Session) start() {
	s.countdown = nil
	s.phase = PhasePlaying
	now := time.Now()
	s.startedAt, s.lastTick, s.lastSync = now, now, now
	s.ticker = time.NewTicker(s.rules.TickInterval)
	log.Info().Str("room", s.id).Msg("match started")
	s.broadcast(wire.Start(s.rules))
	s.syncAll()
}

func (s *Session) tick(now time.Time) {
	if s.phase != PhasePlaying {
		return
	}
	s.state.Tick(now.Sub(s.lastTick).Seconds())
	s.lastTick = now
	if now.Sub(s.lastSync) >= s.syncEvery {
		s.lastSync = now
		s.syncAll()
	}
}

func (s *Session) apply(in Intent) error {
	if s.seat(in.Player) == nil {
		return ErrNotSeated
	}
	if in.Request.Type == wire.TypeReady {
		return s.ready(in.Player)
	}
	if s.phase != PhasePlaying {
		s.reject(in.Player, ErrNotPlaying)
		return ErrNotPlaying
	}

	var (
		events []game.Event
		err    error
		r      = in.Request
	)
	switch r.Type {
	case wire.TypeClaim:
		events, err = s.state.Claim(r.Cell, in.Player, r.Price)
	case wire.TypeRaise:
		events, err = s.state.RaisePrice(r.Cell, in.Player, r.Price)
	case wire.TypeFix:
		events, err = s.state.FixCombo(r.Cells, in.Player)
	case wire.TypeOpen:
		events, err = s.state.Open(r.Cell, in.Player)
	case wire.TypeSwap:
		events, err = s.state.Swap(r.A, r.B, in.Player)
	default:
		err = wire.ErrMalformed
	}
	if err != nil {
		log.Debug().Err(err).Str("room", s.id).Int("player", int(in.Player)).
			Str("action", string(r.Type)).Msg("intent rejected")
		s.reject(in.Player, err)
		return err
	}

	s.broadcast(wire.Echo(in.Player, r))
	for _, m := range wire.FromEvents(events) {
		s.broadcast(m)
	}
	if w, ok := s.state.Winner(); ok {
		s.finish(w, results.ReasonGoal, nil)
	}
	return nil
}

// finish closes the match. gone is the seat that already left, if any.
func (s *Session) finish(winner game.PlayerID, reason string, gone *seat) {
	s.stopTimers()
	s.phase = PhaseOver
	scores := s.state.Scores()
	s.broadcast(wire.Win(winner, scores))

	r := results.Result{
		RoomID:     s.id,
		Reason:     reason,
		DurationMs: time.Since(s.startedAt).Milliseconds(),
		FinishedAt: time.Now(),
		WinnerSeat: results.NoWinnerSeat,
	}
	for i, pl := range s.state.Players() {
		r.Seats[i] = results.Seat{Nickname: pl.Nickname, Score: scores[pl.ID]}
		if st := s.seat(pl.ID); st != nil {
			r.Seats[i].UserID = st.userID
		} else if gone != nil && gone.id == pl.ID {
			r.Seats[i].UserID = gone.userID
		}
		if pl.ID == winner {
			r.Winner = pl.Nickname
			r.WinnerSeat = i
		}
	}

	log.Info().Str("room", s.id).Str("reason", reason).Str("winner", r.Winner).Int("winnerSeat", r.WinnerSeat).
		Str("p1", r.Seats[0].Nickname).Int("score1", r.Seats[0].Score).
		Str("p2", r.Seats[1].Nickname).Int("score2", r.Seats[1].Score).
		Msg("game over")

	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.recorder.Record(ctx, r); err != nil {
		log.Warn().Err(err).Str("room", s.id).Msg("record result")
	}
}

// reject answers a refused intent to its actor only.
func (s *Session) reject(p game.PlayerID, err error) {
	st := s.seat(p)
	if st == nil {
		return
	}
	st.sink.Send(wire.Error(err.Error()))
	if s.state == nil {
		return
	}
	if snap, serr := s.state.Snapshot(p); serr == nil {
		st.sink.Send(wire.Sync(snap))
	}
}

func (s *Session) syncAll() {
	for _, st := range s.seats {
		if snap, err := s.state.Snapshot(st.id); err == nil {
			st.sink.Send(wire.Sync(snap))
		}
	}
}

func (s *Session) broadcast(m wire.Message) {
	for _, st := range s.seats {
		st.sink.Send(m)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(s.id, m); err != nil {
			log.Warn().Err(err).Str("room", s.id).Str("type", string(m.Type)).Msg("publish")
		}
	}
}

// -------------------------------- helpers ----------------------------------

func (s *Session) countdownC() <-chan time.Time {
	if s.countdown == nil {
		return nil
	}
	return s.countdown.C
}

func (s *Session) idleC() <-chan time.Time {
	if s.idle == nil {
		return nil
	}
	return s.idle.C
}

func (s *Session) tickC() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C
}

func (s *Session) stopTimers() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}
}

func (s *Session) freeID() game.PlayerID {
	for id := game.PlayerID(1); ; id++ {
		if s.seat(id) == nil {
			return id
		}
	}
}

func (s *Session) seatIndex(p game.PlayerID) int {
	for i, st := range s.seats {
		if st.id == p {
			return i
		}
	}
	return -1
}

func (s *Session) seat(p game.PlayerID) *seat {
	if i := s.seatIndex(p); i >= 0 {
		return s.seats[i]
	}
	return nil
}

func (s *Session) players() []game.Player {
	out := make([]game.Player, 0, len(s.seats))
	for _, st := range s.seats {
		out = append(out, game.Player{ID: st.id, Nickname: st.nickname})
	}
	return out
}

func (s *Session) refreshInfo() {
	names := make([]string, 0, len(s.seats))
	for _, st := range s.seats {
		names = append(names, st.nickname)
	}
	s.infoMu.Lock()
	s.info = Info{ID: s.id, Phase: s.phase, Players: names, CreatedAt: s.createdAt}
	s.infoMu.Unlock()
}
