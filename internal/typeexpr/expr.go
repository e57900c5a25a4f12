// Package typeexpr 把字段声明中的类型表达式建模为一棵带标签的语法树。
//
// 与直接比较类型字符串不同，树形结构可以精确区分以下几种写法：
//
//	Option[int]        // 单段路径，带一个泛型参数
//	mo.Option[int]     // 两段路径，首段为包名 mo
//	Option[K, V]       // 单段路径，带两个泛型参数
//	(Option[int])      // 括号类型
//
// 字段分类器只需要在这棵树上做结构匹配即可。
package typeexpr

import "strings"

// Expr 是类型表达式树的节点
type Expr interface {
	// String 渲染为合法的 Go 类型语法
	String() string
	exprNode()
}

// Path 命名类型路径
//
//	int            -> [int]
//	Option[int]    -> [Option[int]]
//	time.Time      -> [time, Time]
//	mo.Option[int] -> [mo, Option[int]]
type Path struct {
	Segments []Segment
}

// Segment 路径中的一段
type Segment struct {
	Name string
	Args []Arg // 泛型参数，nil 表示没有方括号参数列表
}

// Arg 泛型参数
// Type 为 nil 表示该位置不是类型（例如常量 Option[3]），此时 Value 保存原始文本
type Arg struct {
	Type  Expr
	Value string
}

// Pointer *T
type Pointer struct{ Elem Expr }

// Slice []T
type Slice struct{ Elem Expr }

// Array [N]T 或 [...]T
type Array struct {
	Len  string
	Elem Expr
}

// Map map[K]V
type Map struct{ Key, Value Expr }

// ChanDir 通道方向
type ChanDir int

const (
	ChanBoth ChanDir = iota
	ChanSend
	ChanRecv
)

// Chan chan T / chan<- T / <-chan T
type Chan struct {
	Dir  ChanDir
	Elem Expr
}

// Paren (T)
type Paren struct{ X Expr }

// Ellipsis ...T，仅出现在变参位置
type Ellipsis struct{ Elem Expr }

// Literal 不再细分的类型字面量（函数类型、内联 struct/interface 等），保存格式化后的源码
type Literal struct {
	Src  string
	Refs []string // 源码中引用的包限定名
}

func (*Path) exprNode()     {}
func (*Pointer) exprNode()  {}
func (*Slice) exprNode()    {}
func (*Array) exprNode()    {}
func (*Map) exprNode()      {}
func (*Chan) exprNode()     {}
func (*Paren) exprNode()    {}
func (*Ellipsis) exprNode() {}
func (*Literal) exprNode()  {}

func (p *Path) String() string {
	parts := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

func (s Segment) String() string {
	if s.Args == nil {
		return s.Name
	}
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.String()
	}
	return s.Name + "[" + strings.Join(args, ", ") + "]"
}

func (a Arg) String() string {
	if a.Type != nil {
		return a.Type.String()
	}
	return a.Value
}

// IsType 参数是否为类型
func (a Arg) IsType() bool {
	return a.Type != nil
}

func (p *Pointer) String() string { return "*" + p.Elem.String() }

func (s *Slice) String() string { return "[]" + s.Elem.String() }

func (a *Array) String() string { return "[" + a.Len + "]" + a.Elem.String() }

func (m *Map) String() string { return "map[" + m.Key.String() + "]" + m.Value.String() }

func (c *Chan) String() string {
	switch c.Dir {
	case ChanSend:
		return "chan<- " + c.Elem.String()
	case ChanRecv:
		return "<-chan " + c.Elem.String()
	default:
		return "chan " + c.Elem.String()
	}
}

func (p *Paren) String() string { return "(" + p.X.String() + ")" }

func (e *Ellipsis) String() string { return "..." + e.Elem.String() }

func (l *Literal) String() string { return l.Src }

// Head 返回路径的首段
func (p *Path) Head() (Segment, bool) {
	if len(p.Segments) == 0 {
		return Segment{}, false
	}
	return p.Segments[0], true
}

// Ident 构造单段无参数路径，便于测试和合成
func Ident(name string) *Path {
	return &Path{Segments: []Segment{{Name: name}}}
}

// Generic 构造单段带类型参数的路径
func Generic(name string, args ...Expr) *Path {
	seg := Segment{Name: name, Args: make([]Arg, len(args))}
	for i, a := range args {
		seg.Args[i] = Arg{Type: a}
	}
	return &Path{Segments: []Segment{seg}}
}
