// internal/models/card.go
package models

import "fmt"

// Color is the color printed on a card, or the active color of the discard pile.
// Wild cards carry ColorWild; the active color is always one of the four concrete colors.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorWild   Color = "wild"
)

// ConcreteColors lists the playable colors in deck-building order.
var ConcreteColors = []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// IsConcrete reports whether c is one of red, yellow, green or blue.
func (c Color) IsConcrete() bool {
	switch c {
	case ColorRed, ColorYellow, ColorGreen, ColorBlue:
		return true
	}
	return false
}

// Value is the face value of a card: a digit or an action.
type Value string

const (
	ValueSkip      Value = "skip"
	ValueReverse   Value = "reverse"
	ValueDrawTwo   Value = "draw2"
	ValueWild      Value = "wild"
	ValueWildDraw4 Value = "wild_draw4"
)

// NumberValues lists "0" through "9".
var NumberValues = []Value{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// ActionValues lists the colored action cards.
var ActionValues = []Value{ValueSkip, ValueReverse, ValueDrawTwo}

// IsNumber reports whether v is a plain numbered value.
func (v Value) IsNumber() bool {
	return len(v) == 1 && v[0] >= '0' && v[0] <= '9'
}

// IsWild reports whether v is one of the two wild values.
func (v Value) IsWild() bool {
	return v == ValueWild || v == ValueWildDraw4
}

// Card is an immutable value. Two cards with the same color and value are interchangeable.
type Card struct {
	Color Color `json:"color"`
	Value Value `json:"value"`
}

// Valid reports whether c is a card that can exist in a standard deck.
func (c Card) Valid() bool {
	if c.Color == ColorWild {
		return c.Value.IsWild()
	}
	if !c.Color.IsConcrete() {
		return false
	}
	if c.Value.IsNumber() {
		return true
	}
	switch c.Value {
	case ValueSkip, ValueReverse, ValueDrawTwo:
		return true
	}
	return false
}

func (c Card) String() string {
	return fmt.Sprintf("%s %s", c.Color, c.Value)
}
