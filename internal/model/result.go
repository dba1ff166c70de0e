package model

// GameOverReason explains why a game ended
type GameOverReason string

const (
	ReasonWin     GameOverReason = "win"
	ReasonDraw    GameOverReason = "draw"
	ReasonForfeit GameOverReason = "forfeit"
)

// GameResult is the outcome of a finished game
type GameResult struct {
	Reason      GameOverReason
	Winner      PlayerID // Empty on draw or forfeit without a sole survivor
	ForfeitedBy PlayerID // Set when Reason is forfeit
}

// IsDraw returns true if nobody won
func (r GameResult) IsDraw() bool {
	return r.Reason == ReasonDraw
}
