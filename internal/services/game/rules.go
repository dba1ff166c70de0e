package game

import "github.com/brentkao/roomcoord/internal/model"

// DefaultWinLength is the line length FiveInARow needs by default
const DefaultWinLength = 5

// Result is what a Rules evaluation decides about the board after a move
type Result struct {
	Terminal bool
	Winner   model.PlayerID // set when the game was won
	Draw     bool
}

// Rules decides whether the game is over after a move
type Rules interface {
	Evaluate(board *model.Board, last model.Position) Result
}

// FiveInARow awards the game to the player who just completed an unbroken
// horizontal, vertical or diagonal line of at least Length marks. A full
// board with no such line is a draw.
type FiveInARow struct {
	Length int
}

// line directions: horizontal, vertical, and both diagonals
var directions = [4]model.Position{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
	{X: 1, Y: -1},
}

// Evaluate checks only lines through last, since no other line can have
// changed since the previous evaluation.
func (r FiveInARow) Evaluate(board *model.Board, last model.Position) Result {
	mover := board.Get(last)
	if mover == "" {
		return Result{}
	}

	length := r.Length
	if length <= 0 {
		length = DefaultWinLength
	}

	for _, d := range directions {
		count := 1 + run(board, last, d, mover) + run(board, last, model.Position{X: -d.X, Y: -d.Y}, mover)
		if count >= length {
			return Result{Terminal: true, Winner: mover}
		}
	}

	if board.IsFull() {
		return Result{Terminal: true, Draw: true}
	}
	return Result{}
}

// run counts consecutive cells owned by owner stepping away from start
func run(board *model.Board, start, step model.Position, owner model.PlayerID) int {
	n := 0
	pos := model.Position{X: start.X + step.X, Y: start.Y + step.Y}
	for board.IsValidPosition(pos) && board.Get(pos) == owner {
		n++
		pos = model.Position{X: pos.X + step.X, Y: pos.Y + step.Y}
	}
	return n
}
