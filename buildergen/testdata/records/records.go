package records

import (
	"io"
	tm "time"

	"github.com/samber/mo"
	. "github.com/samber/mo"

	"github.com/donutnomad/gobuilder/internal/pkgresolver/testdata/gg"
)

// @Builder
type Person struct {
	Name string
	Age  Option[uint32]
}

// @Builder
type Command struct {
	Executable string
	Args       []string
	Env        map[string]string
	CurrentDir Option[string]
	Timeout    Option[tm.Duration]
	Output     io.Writer
	Kind       g2.Type
	Result     Either[int, string]
}

// @Builder
type Empty struct{}

// @Builder
type Boundary struct {
	Qualified mo.Option[int]
	Paren     (Option[int])
	Ptr       *Option[int]
	List      []Option[int]
}

// @Builder
type unexported struct {
	name  string
	count Option[int]
	_     int
	X, Y  float64
}

// @Builder
type Keywords struct {
	Type  string
	Range Option[int]
}

type Shape interface {
	Area() float64
}

type Celsius float64

type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

type Base struct{ ID int }

type WithEmbedded struct {
	Base
	Name string
}

type BuildField struct {
	Build string
}

type CtorField struct {
	Builder string
}

type HasCtor struct {
	Name string
}

func (HasCtor) Builder() string { return "custom" }

type Prefixed struct {
	name string
	Name string
}
