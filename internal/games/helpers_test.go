package games

// seqSource replays a fixed sequence of draws, wrapping around at the end.
type seqSource struct {
	vals  []int
	next  int
	calls int
}

func (s *seqSource) Intn(n int) int {
	v := s.vals[s.next%len(s.vals)] % n
	s.next++
	s.calls++
	return v
}
