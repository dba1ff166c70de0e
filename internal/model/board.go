package model

// DefaultBoardSize is the dimension of the square game grid
const DefaultBoardSize = 20

// Position identifies a cell on the board
type Position struct {
	X int // column, 0-indexed from left
	Y int // row, 0-indexed from top
}

// Board is the shared grid for one game. Cells[y][x] holds the id of the
// player who marked it, or "" when empty.
type Board struct {
	Size  int
	Cells [][]PlayerID
}

// NewBoard creates an empty board of the given size
func NewBoard(size int) *Board {
	cells := make([][]PlayerID, size)
	for i := range cells {
		cells[i] = make([]PlayerID, size)
	}
	return &Board{
		Size:  size,
		Cells: cells,
	}
}

// Get returns the owner of the given cell, or "" if empty or out of range
func (b *Board) Get(pos Position) PlayerID {
	if !b.IsValidPosition(pos) {
		return ""
	}
	return b.Cells[pos.Y][pos.X]
}

// Set marks a cell for a player
func (b *Board) Set(pos Position, playerID PlayerID) {
	if b.IsValidPosition(pos) {
		b.Cells[pos.Y][pos.X] = playerID
	}
}

// IsEmpty returns true if the cell at the given position is unmarked
func (b *Board) IsEmpty(pos Position) bool {
	return b.Get(pos) == ""
}

// IsValidPosition returns true if the position is within bounds
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.X >= 0 && pos.X < b.Size && pos.Y >= 0 && pos.Y < b.Size
}

// IsFull returns true if all cells are marked
func (b *Board) IsFull() bool {
	return b.EmptyCount() == 0
}

// EmptyCount returns the number of unmarked cells
func (b *Board) EmptyCount() int {
	count := 0
	for _, row := range b.Cells {
		for _, cell := range row {
			if cell == "" {
				count++
			}
		}
	}
	return count
}

// Clone returns a deep copy safe to hand out after the room lock is released
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := NewBoard(b.Size)
	for y := range b.Cells {
		copy(out.Cells[y], b.Cells[y])
	}
	return out
}
