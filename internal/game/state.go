// apps/go-server/internal/game/state.go
//
// GameState is the authoritative rules engine for one match.
// Responsibilities:
//   - Own the 6x6 board, per-player cash/cooldown, opened combos, fixed-combo
//     history and the score table.
//   - Validate every action against current state before mutating anything.
//   - Rescan combos after every board change and report what changed as a
//     list of Events.
//
// Notes:
//   - Not safe for concurrent use. The host serializes ticks and actions.
//   - The line index is computed once in New and only holds coordinates; scans
//     always read the live board through it.

package game

import "fmt"

// Player is a registered seat.
type Player struct {
	ID       PlayerID `json:"id"`
	IsLocal  bool     `json:"isLocal"`
	Nickname string   `json:"nickname"`
}

type wallet struct {
	cash     float64
	cooldown float64
}

// GameState is the aggregate root of a match.
type GameState struct {
	rules       Rules
	board       [BoardSize][BoardSize]CellState // [y][x]
	players     []Player
	wallets     map[PlayerID]*wallet
	opened      map[PlayerID][]*Combo
	fixed       map[PlayerID][]*Combo
	highlighted []Coordinates
	score       *GameScore
	lines       [][]Coordinates
}

// New builds an empty board governed by rules.
func New(rules Rules) *GameState {
	g := &GameState{
		rules:   rules,
		wallets: make(map[PlayerID]*wallet),
		opened:  make(map[PlayerID][]*Combo),
		fixed:   make(map[PlayerID][]*Combo),
		score:   NewGameScore(rules.ScoreGoal),
		lines:   buildLines(BoardSize, MinComboCells),
	}
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			g.board[y][x] = newCellState(At(x, y))
		}
	}
	return g
}

// AddPlayer registers a seat. Registering the same id twice or more than
// MaxPlayers seats is a caller bug and returns an error.
func (g *GameState) AddPlayer(id PlayerID, isLocal bool, nickname string) error {
	if id < 0 {
		return fmt.Errorf("%w: id %d is reserved", ErrUnknownPlayer, id)
	}
	if _, ok := g.wallets[id]; ok {
		return fmt.Errorf("%w: %d", ErrPlayerExists, id)
	}
	if len(g.players) >= MaxPlayers {
		return ErrRoomFull
	}
	if err := g.score.AddPlayer(id); err != nil {
		return err
	}
	g.players = append(g.players, Player{ID: id, IsLocal: isLocal, Nickname: nickname})
	g.wallets[id] = &wallet{cash: g.rules.StartCash, cooldown: g.rules.StartCooldown}
	g.opened[id] = nil
	g.fixed[id] = nil
	return nil
}

// --------------------------------- queries ---------------------------------

// Rules returns the rule set the match was created with.
func (g *GameState) Rules() Rules { return g.rules }

// Players returns the registered seats in join order.
func (g *GameState) Players() []Player { return append([]Player(nil), g.players...) }

// Player looks up a seat by id.
func (g *GameState) Player(id PlayerID) (Player, bool) {
	for _, p := range g.players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Cell returns a read-only view of the cell at c.
func (g *GameState) Cell(c Coordinates) (CellView, error) {
	if err := checkCoords(c); err != nil {
		return CellView{}, err
	}
	return g.view(c), nil
}

// Cells returns the whole board in row-major order.
func (g *GameState) Cells() []CellView {
	out := make([]CellView, 0, CellCount)
	for i := 0; i < CellCount; i++ {
		out = append(out, g.view(FromIndex(i)))
	}
	return out
}

// UnownedCells lists free cells in reading order.
func (g *GameState) UnownedCells() []Coordinates {
	var out []Coordinates
	for i := 0; i < CellCount; i++ {
		c := FromIndex(i)
		if !g.cell(c).data.Owned() {
			out = append(out, c)
		}
	}
	return out
}

// Cash returns the current funds of p.
func (g *GameState) Cash(p PlayerID) (float64, error) {
	w, err := g.wallet(p)
	if err != nil {
		return 0, err
	}
	return w.cash, nil
}

// Cooldown returns the seconds p must still wait before acting.
func (g *GameState) Cooldown(p PlayerID) (float64, error) {
	w, err := g.wallet(p)
	if err != nil {
		return 0, err
	}
	return w.cooldown, nil
}

// PlayerCombos returns the opened combos of p, or with onlyOpened false every
// combo on the board owned by p regardless of lock state.
func (g *GameState) PlayerCombos(p PlayerID, onlyOpened bool) ([]*Combo, error) {
	if err := g.checkPlayer(p); err != nil {
		return nil, err
	}
	if onlyOpened {
		return append([]*Combo(nil), g.opened[p]...), nil
	}
	var out []*Combo
	for _, c := range g.findCombos(true) {
		if c.Owner() == p {
			out = append(out, c)
		}
	}
	return out, nil
}

// FixedHistory returns the combos p has fixed, oldest first.
func (g *GameState) FixedHistory(p PlayerID) ([]*Combo, error) {
	if err := g.checkPlayer(p); err != nil {
		return nil, err
	}
	return append([]*Combo(nil), g.fixed[p]...), nil
}

// Scores returns a copy of every registered player's score.
func (g *GameState) Scores() map[PlayerID]int { return g.score.Scores() }

// Winner returns the first player to reach the goal, if any.
func (g *GameState) Winner() (PlayerID, bool) { return g.score.Winner() }

// Highlighted is the union of all opened combo cells, in reading order.
func (g *GameState) Highlighted() []Coordinates {
	return append([]Coordinates(nil), g.highlighted...)
}

// ------------------------------- predicates --------------------------------

// CanAct reports whether p can commit an action costing price right now.
func (g *GameState) CanAct(p PlayerID, price int) bool {
	w, ok := g.wallets[p]
	return ok && w.cash >= float64(price) && w.cooldown <= 0
}

// CanClaim reports whether c is on the board and unowned.
func (g *GameState) CanClaim(c Coordinates) bool {
	return c.Valid() && !g.cell(c).data.Owned()
}

// CanRaise requires an unlocked cell of p whose price stays within MaxPrice.
func (g *GameState) CanRaise(c Coordinates, delta int, p PlayerID) bool {
	if !c.Valid() {
		return false
	}
	d := g.cell(c).data
	return delta > 0 && d.OwnedBy(p) && !d.Locked && d.Price+delta <= g.rules.MaxPrice
}

// CanOpen requires a locked cell of p.
func (g *GameState) CanOpen(c Coordinates, p PlayerID) bool {
	if !c.Valid() {
		return false
	}
	d := g.cell(c).data
	return d.OwnedBy(p) && d.Locked
}

// CanSwap requires two unlocked cells with equal prices and different owners
// on one row or column.
func (g *GameState) CanSwap(a, b Coordinates) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	da, db := g.cell(a).data, g.cell(b).data
	return da.Owned() && db.Owned() &&
		da.Price == db.Price &&
		da.Owner != db.Owner &&
		!da.Locked && !db.Locked &&
		(a.X == b.X || a.Y == b.Y)
}

// IsCombo validates a coordinate list against the live board.
func (g *GameState) IsCombo(coords []Coordinates, ignoreLock bool) (bool, error) {
	if err := checkCoords(coords...); err != nil {
		return false, err
	}
	return IsCombo(g.views(coords), ignoreLock), nil
}

// OpenPrice is what unlocking c costs: its current price.
func (g *GameState) OpenPrice(c Coordinates) int {
	if !c.Valid() {
		return 0
	}
	return g.cell(c).data.Price
}

// SwapPrice is what swapping a and b costs. Both carry the same price when
// the swap is legal, so a alone decides it.
func (g *GameState) SwapPrice(a, b Coordinates) int { return g.OpenPrice(a) }

// -------------------------------- mutations --------------------------------

// Claim puts a coin of p on a free cell at the stated price.
func (g *GameState) Claim(c Coordinates, p PlayerID, price int) ([]Event, error) {
	if err := g.checkAction(p, c); err != nil {
		return nil, err
	}
	if price < g.rules.MinPrice || price > g.rules.MaxPrice {
		return nil, reject("price %d outside [%d,%d]", price, g.rules.MinPrice, g.rules.MaxPrice)
	}
	if !g.CanClaim(c) {
		return nil, reject("cell %s is taken", c)
	}
	if !g.CanAct(p, price) {
		return nil, reject("player %d cannot act for %d", p, price)
	}

	events := []Event{g.cell(c).Claim(price, p, g.isLocal(p))}
	g.commit(p, price)
	events = append(events, g.boardChanged()...)
	events = append(events, g.score.Add(p, price)...)
	return events, nil
}

// RaisePrice adds delta to the price of an unlocked cell owned by p.
func (g *GameState) RaisePrice(c Coordinates, p PlayerID, delta int) ([]Event, error) {
	if err := g.checkAction(p, c); err != nil {
		return nil, err
	}
	if !g.CanRaise(c, delta, p) {
		return nil, reject("player %d cannot raise %s by %d", p, c, delta)
	}
	if !g.CanAct(p, delta) {
		return nil, reject("player %d cannot act for %d", p, delta)
	}

	events := []Event{g.cell(c).RaisePrice(delta)}
	g.commit(p, delta)
	events = append(events, g.boardChanged()...)
	events = append(events, g.score.Add(p, delta)...)
	return events, nil
}

// FixCombo locks a combo of p and credits its fixing bonus. Fixing costs
// nothing and does not touch the cooldown.
func (g *GameState) FixCombo(coords []Coordinates, p PlayerID) ([]Event, error) {
	if err := g.checkAction(p, coords...); err != nil {
		return nil, err
	}
	combo, err := NewCombo(g.views(coords), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	if combo.Owner() != p {
		return nil, reject("combo at %s belongs to player %d", combo.First(), combo.Owner())
	}

	g.fixed[p] = append(g.fixed[p], combo)
	var events []Event
	for _, c := range combo.coords {
		events = append(events, g.cell(c).Lock())
	}
	events = append(events, g.boardChanged()...)
	events = append(events, g.score.Add(p, combo.FixingBonus())...)
	return events, nil
}

// Open unlocks a locked cell of p for the price of the cell.
func (g *GameState) Open(c Coordinates, p PlayerID) ([]Event, error) {
	if err := g.checkAction(p, c); err != nil {
		return nil, err
	}
	if !g.CanOpen(c, p) {
		return nil, reject("player %d cannot open %s", p, c)
	}
	price := g.OpenPrice(c)
	if !g.CanAct(p, price) {
		return nil, reject("player %d cannot act for %d", p, price)
	}

	events := []Event{g.cell(c).Unlock()}
	g.commit(p, price)
	return append(events, g.boardChanged()...), nil
}

// Swap exchanges two cells between players. Whatever the actor ends up
// owning is locked straight away.
func (g *GameState) Swap(a, b Coordinates, p PlayerID) ([]Event, error) {
	if err := g.checkAction(p, a, b); err != nil {
		return nil, err
	}
	if !g.CanSwap(a, b) {
		return nil, reject("cells %s and %s cannot swap", a, b)
	}
	price := g.SwapPrice(a, b)
	if !g.CanAct(p, price) {
		return nil, reject("player %d cannot act for %d", p, price)
	}

	ca, cb := g.cell(a), g.cell(b)
	da, db := ca.data, cb.data
	var events []Event
	if ev, ok := ca.Adopt(db); ok {
		events = append(events, ev)
	}
	if ev, ok := cb.Adopt(da); ok {
		events = append(events, ev)
	}
	for _, cs := range []*CellState{ca, cb} {
		if cs.data.Owner == p {
			events = append(events, cs.Lock())
		}
	}
	g.commit(p, price)
	return append(events, g.boardChanged()...), nil
}

// Tick advances the economy by dt seconds: cash accrues up to the cap and
// cooldowns run down to zero.
func (g *GameState) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	for _, p := range g.players {
		w := g.wallets[p.ID]
		if w.cash < g.rules.CashCap {
			w.cash = min(w.cash+dt*g.rules.CashRate, g.rules.CashCap)
		}
		if w.cooldown > 0 {
			w.cooldown = max(w.cooldown-dt, 0)
		}
	}
}

// --------------------------------- helpers ---------------------------------

func (g *GameState) cell(c Coordinates) *CellState { return &g.board[c.Y][c.X] }

func (g *GameState) view(c Coordinates) CellView { return g.cell(c).View() }

func (g *GameState) views(cs []Coordinates) []CellView {
	out := make([]CellView, len(cs))
	for i, c := range cs {
		out[i] = g.view(c)
	}
	return out
}

func (g *GameState) wallet(p PlayerID) (*wallet, error) {
	w, ok := g.wallets[p]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, p)
	}
	return w, nil
}

func (g *GameState) checkPlayer(p PlayerID) error {
	_, err := g.wallet(p)
	return err
}

// checkAction guards every mutation: known actor, coordinates on the board,
// match not decided yet.
func (g *GameState) checkAction(p PlayerID, cs ...Coordinates) error {
	if err := g.checkPlayer(p); err != nil {
		return err
	}
	if err := checkCoords(cs...); err != nil {
		return err
	}
	if w, ok := g.score.Winner(); ok {
		return reject("match already won by player %d", w)
	}
	return nil
}

func (g *GameState) isLocal(p PlayerID) bool {
	pl, _ := g.Player(p)
	return pl.IsLocal
}

// commit debits price and restarts the cooldown. Cash may end up below zero;
// the instant-action check is the only guard.
func (g *GameState) commit(p PlayerID, price int) {
	w := g.wallets[p]
	w.cash -= float64(price)
	w.cooldown = g.rules.ActionCooldown
}

// boardChanged rescans combos and returns the highlight and board events.
func (g *GameState) boardChanged() []Event {
	return []Event{g.rescan(), {Kind: EventBoardChanged}}
}

// rescan rebuilds every player's opened combos from the line index.
func (g *GameState) rescan() Event {
	for p := range g.opened {
		g.opened[p] = nil
	}
	seen := make(map[Coordinates]struct{})
	for _, combo := range g.findCombos(false) {
		g.opened[combo.Owner()] = append(g.opened[combo.Owner()], combo)
		for _, c := range combo.coords {
			seen[c] = struct{}{}
		}
	}
	g.highlighted = make([]Coordinates, 0, len(seen))
	for c := range seen {
		g.highlighted = append(g.highlighted, c)
	}
	SortCoordinates(g.highlighted)
	return Event{Kind: EventOpenedCombosChanged, Highlighted: g.Highlighted()}
}

// findCombos tests every contiguous sub-run of every line, growing forward
// from each start. A uniform run of n cells therefore yields one combo per
// sub-run of length 3..n.
func (g *GameState) findCombos(ignoreLock bool) []*Combo {
	var out []*Combo
	for _, line := range g.lines {
		for start := 0; start <= len(line)-MinComboCells; start++ {
			run := make([]CellView, 0, len(line)-start)
			for _, c := range line[start:] {
				run = append(run, g.view(c))
				if combo, err := NewCombo(run, ignoreLock); err == nil {
					out = append(out, combo)
				}
			}
		}
	}
	return out
}
