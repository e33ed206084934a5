// internal/game/rules.go
package game

import "github.com/jason-s-yu/uno/internal/models"

// IsMoveValid reports whether card may be played on top given the active color:
// wilds always match, otherwise the color must equal the active color or the value
// must equal the top card's value.
func IsMoveValid(card, top models.Card, activeColor models.Color) bool {
	if card.Color == models.ColorWild {
		return true
	}
	if card.Color == activeColor {
		return true
	}
	return card.Value == top.Value
}

// turnIncrement returns how many seats the turn pointer moves after card is played.
func turnIncrement(v models.Value) int {
	switch v {
	case models.ValueSkip, models.ValueDrawTwo, models.ValueWildDraw4:
		return 2
	default:
		return 1
	}
}

// penaltyDraw returns how many cards the next player draws after v is played.
func penaltyDraw(v models.Value) int {
	switch v {
	case models.ValueDrawTwo:
		return 2
	case models.ValueWildDraw4:
		return 4
	default:
		return 0
	}
}

// seat wraps idx into [0, n).
func seat(idx, n int) int {
	return ((idx % n) + n) % n
}
