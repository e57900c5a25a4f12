package kinds

import "io"

type Shape interface {
	Area() float64
}

type Celsius float64

type Reader = io.Reader

type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

type Base struct {
	ID int64
}

type WithEmbedded struct {
	Base
	*io.PipeReader
	Name string
}

type Point struct {
	X, Y  int    `json:"-"`
	Label string `json:"label"`
}

type Empty struct{}
