package game

// GameScore tracks cumulative score per player and detects the winner.
type GameScore struct {
	goal   int
	order  []PlayerID
	scores map[PlayerID]int
	winner PlayerID
}

// NewGameScore returns an empty score table with the given win threshold.
func NewGameScore(goal int) *GameScore {
	return &GameScore{goal: goal, scores: make(map[PlayerID]int), winner: NoOwner}
}

// AddPlayer registers p with a zero score.
func (s *GameScore) AddPlayer(p PlayerID) error {
	if _, ok := s.scores[p]; ok {
		return ErrPlayerExists
	}
	s.scores[p] = 0
	s.order = append(s.order, p)
	return nil
}

func (s *GameScore) Goal() int { return s.goal }

// Score returns the score of p (0 for unknown players).
func (s *GameScore) Score(p PlayerID) int { return s.scores[p] }

// Scores returns a copy of the score table.
func (s *GameScore) Scores() map[PlayerID]int {
	out := make(map[PlayerID]int, len(s.scores))
	for p, v := range s.scores {
		out[p] = v
	}
	return out
}

// Winner returns the player that reached the goal first, if any.
func (s *GameScore) Winner() (PlayerID, bool) {
	return s.winner, s.winner != NoOwner
}

// Add credits bonus to p. The returned events always include a score change
// and include a win the first time any player reaches the goal.
func (s *GameScore) Add(p PlayerID, bonus int) []Event {
	s.scores[p] += bonus
	return s.changed()
}

// Overwrite replaces the scores of known players, ignoring unknown ids. It
// reports nothing when every value already matched.
func (s *GameScore) Overwrite(scores map[PlayerID]int) []Event {
	dirty := false
	for p, v := range scores {
		if old, ok := s.scores[p]; ok && old != v {
			s.scores[p] = v
			dirty = true
		}
	}
	if !dirty {
		return nil
	}
	return s.changed()
}

func (s *GameScore) changed() []Event {
	events := []Event{{Kind: EventScoreChanged, Scores: s.Scores()}}
	if s.winner != NoOwner {
		return events
	}
	for _, p := range s.order {
		if s.scores[p] >= s.goal {
			s.winner = p
			events = append(events, Event{Kind: EventPlayerWon, Player: p})
			break
		}
	}
	return events
}
