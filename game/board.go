package game

import (
	"math/rand"
	"strings"
)

// Difficulty selects how many pairs are dealt.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// String returns the protocol string for a Difficulty.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// ParseDifficulty maps a protocol string to a Difficulty.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(s) {
	case "easy":
		return Easy, true
	case "medium":
		return Medium, true
	case "hard":
		return Hard, true
	default:
		return Medium, false
	}
}

// PairsForDifficulty returns the number of pairs requested for d.
func PairsForDifficulty(d Difficulty) int {
	switch d {
	case Easy:
		return 4
	case Hard:
		return 12
	default:
		return 8
	}
}

// DefaultSymbolSet is used when an unknown symbol set is requested.
const DefaultSymbolSet = "greek"

var symbolSets = map[string][]string{
	"greek":   {"Α", "α", "Β", "β", "Γ", "γ", "Δ", "δ", "Ε", "ε", "Ζ", "ζ", "Η", "η", "Θ", "θ", "Ι", "ι", "Κ", "κ", "Λ", "λ", "Μ", "μ"},
	"numbers": {"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"},
	"emojis":  {"🐶", "🐱", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼", "🐨", "🐯", "🦁", "🐮"},
}

// IsSymbolSet reports whether id names a known catalog.
func IsSymbolSet(id string) bool {
	_, ok := symbolSets[id]
	return ok
}

// SymbolCatalog returns a copy of the catalog for id, falling back to DefaultSymbolSet.
func SymbolCatalog(id string) []string {
	set, ok := symbolSets[id]
	if !ok {
		set = symbolSets[DefaultSymbolSet]
	}
	return append([]string(nil), set...)
}

// BuildDeck returns the shuffled symbol sequence for a new board: the first
// PairsForDifficulty(d) catalog entries (or the whole catalog if it is
// shorter), each appearing exactly twice.
func BuildDeck(d Difficulty, symbolSet string, rng *rand.Rand) []string {
	symbols := SymbolCatalog(symbolSet)
	if n := PairsForDifficulty(d); n < len(symbols) {
		symbols = symbols[:n]
	}
	deck := make([]string, 0, 2*len(symbols))
	deck = append(deck, symbols...)
	deck = append(deck, symbols...)
	shuffleSymbols(deck, rng)
	return deck
}

// shuffleSymbols applies Fisher-Yates in place.
func shuffleSymbols(deck []string, rng *rand.Rand) {
	for i := len(deck) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.Intn(i + 1)
		} else {
			j = rand.Intn(i + 1)
		}
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// ColumnsForTiles returns the grid width for a board of n tiles.
func ColumnsForTiles(n int) int {
	switch {
	case n <= 8:
		return 2
	case n <= 16:
		return 4
	default:
		return 6
	}
}

// Columns returns the grid width used for difficulty d.
func Columns(d Difficulty) int {
	return ColumnsForTiles(2 * PairsForDifficulty(d))
}

// Tile is a single card on the board.
// Wrong and HintRevealed are render flags; they never affect matching.
type Tile struct {
	ID           int
	Symbol       string
	FaceUp       bool
	Matched      bool
	Wrong        bool
	HintRevealed bool
}

// Board holds the tiles of one deal.
type Board struct {
	Cols  int
	Tiles []Tile
	// Deck is the symbol order the board was dealt from; restarting with
	// the same board redeals it verbatim.
	Deck []string
}

// NewBoard lays out deck as face-down tiles.
func NewBoard(deck []string, cols int) *Board {
	tiles := make([]Tile, len(deck))
	for i, symbol := range deck {
		tiles[i] = Tile{ID: i, Symbol: symbol}
	}
	return &Board{
		Cols:  cols,
		Tiles: tiles,
		Deck:  append([]string(nil), deck...),
	}
}

// TotalPairs returns the number of pairs dealt.
func (b *Board) TotalPairs() int {
	return len(b.Tiles) / 2
}

// AllMatched returns true if every tile on the board is matched.
func (b *Board) AllMatched() bool {
	for _, tile := range b.Tiles {
		if !tile.Matched {
			return false
		}
	}
	return true
}

// hintPair returns the first symbol, in order of first appearance on the
// board, that still has two matchable face-down tiles.
func (b *Board) hintPair() (int, int, bool) {
	var order []string
	bySymbol := make(map[string][]int)
	for i, tile := range b.Tiles {
		if tile.Matched || tile.FaceUp {
			continue
		}
		if _, seen := bySymbol[tile.Symbol]; !seen {
			order = append(order, tile.Symbol)
		}
		bySymbol[tile.Symbol] = append(bySymbol[tile.Symbol], i)
	}
	for _, symbol := range order {
		if ids := bySymbol[symbol]; len(ids) >= 2 {
			return ids[0], ids[1], true
		}
	}
	return -1, -1, false
}
