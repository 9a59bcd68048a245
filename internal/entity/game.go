package entity

const (
	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

// WinCombos are the rows, columns and diagonals of the board.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Board [9]string

// NewBoard parses a wire board: missing entries, blanks and anything other than X/O become empty.
func NewBoard(cells []string) Board {
	var board Board
	for i := 0; i < len(board) && i < len(cells); i++ {
		switch cells[i] {
		case PlayerX, "x":
			board[i] = PlayerX
		case PlayerO, "o":
			board[i] = PlayerO
		}
	}

	return board
}

// CheckLine reports whether mark fills any of the winning lines. All lines are inspected.
func CheckLine(board Board, mark string) bool {
	if mark != PlayerX && mark != PlayerO {
		return false
	}

	won := false
	for _, combo := range WinCombos {
		if board[combo[0]] == mark && board[combo[1]] == mark && board[combo[2]] == mark {
			won = true
		}
	}

	return won
}

func IsFull(board Board) bool {
	for _, cell := range board {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func IsEmpty(board Board) bool {
	for _, cell := range board {
		if cell != EmptyCell {
			return false
		}
	}

	return true
}

// EmptyCells returns the free cell indexes in ascending order.
func EmptyCells(board Board) []int {
	cells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// DetermineResult returns the winning mark, PlayerTie for a full board, or "" while the game continues.
func DetermineResult(board Board) string {
	switch {
	case CheckLine(board, PlayerX):
		return PlayerX
	case CheckLine(board, PlayerO):
		return PlayerO
	case IsFull(board):
		return PlayerTie
	default:
		return ""
	}
}

func IsTerminal(board Board) bool {
	return DetermineResult(board) != ""
}

func Opponent(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// MarkToMove infers whose turn it is from the mark counts, X moving first.
func MarkToMove(board Board) string {
	var countX, countO int
	for _, cell := range board {
		switch cell {
		case PlayerX:
			countX++
		case PlayerO:
			countO++
		}
	}

	if countX <= countO {
		return PlayerX
	}
	return PlayerO
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < len(Board{})
}
