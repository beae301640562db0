// Package sense holds what a rule perceives: world things, the pooled
// targets built from them and the per-rule target set.
package sense

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Color is a tile color. Things, filters and modifiers share the palette.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
	Grey
	Red
	Green
	Blue
	Yellow
	Orange
	Purple
	Pink
	Brown
	NumColors
)

var colorNames = [NumColors]string{
	"none", "white", "black", "grey", "red", "green", "blue",
	"yellow", "orange", "purple", "pink", "brown",
}

func (c Color) String() string {
	if c >= NumColors {
		return "unknown"
	}
	return colorNames[c]
}

// ParseColor maps a catalog name to a Color.
func ParseColor(s string) (Color, bool) {
	for i, n := range colorNames {
		if n == s {
			return Color(i), true
		}
	}
	return NoColor, false
}

// Expression is the face a thing is showing.
type Expression uint8

const (
	NoExpression Expression = iota
	Happy
	Sad
	Angry
	Crazy
	Love
	NumExpressions
)

var expressionNames = [NumExpressions]string{"none", "happy", "sad", "angry", "crazy", "love"}

func (e Expression) String() string {
	if e >= NumExpressions {
		return "unknown"
	}
	return expressionNames[e]
}

// ParseExpression maps a catalog name to an Expression.
func ParseExpression(s string) (Expression, bool) {
	for i, n := range expressionNames {
		if n == s {
			return Expression(i), true
		}
	}
	return NoExpression, false
}

// Classification is what filters match on.
type Classification struct {
	Type       string // object type, e.g. "apple", "rover"
	Color      Color
	Expression Expression
}

// Thing is the view of a world object consumed by sensors.
type Thing interface {
	ID() uint64
	Position() r3.Vec
	Radius() float64
	Classification() Classification
	// Alive reports whether the thing is still part of the world.
	Alive() bool
	// Ignored things are skipped by every sensor.
	Ignored() bool
	Dead() bool
	Squashed() bool
	Missile() bool
}
