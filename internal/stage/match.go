package stage

// MatchResolver decides whether two touching entities annihilate.
type MatchResolver struct {
	PointsPerMatch int
}

// NewMatchResolver creates a resolver awarding points per match.
func NewMatchResolver(points int) MatchResolver {
	return MatchResolver{PointsPerMatch: points}
}

// Matches reports whether a and b share kind or color.
func (m MatchResolver) Matches(a, b Entity) bool {
	return a.Kind == b.Kind || a.Color == b.Color
}

// Resolve returns the score delta for a match, or false if a and b do not match.
func (m MatchResolver) Resolve(a, b Entity) (int, bool) {
	if !m.Matches(a, b) {
		return 0, false
	}
	return m.PointsPerMatch, true
}
