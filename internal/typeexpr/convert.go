package typeexpr

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
)

// FromAST 将 go/ast 中的类型表达式转换为类型表达式树
// 不能细分的节点会退化为 Literal，保证转换是全函数
func FromAST(expr ast.Expr) Expr {
	switch e := expr.(type) {
	case *ast.Ident:
		return Ident(e.Name)

	case *ast.SelectorExpr:
		if segs, ok := selectorSegments(e); ok {
			return &Path{Segments: segs}
		}

	case *ast.IndexExpr:
		return withArgs(e.X, []ast.Expr{e.Index}, expr)

	case *ast.IndexListExpr:
		return withArgs(e.X, e.Indices, expr)

	case *ast.StarExpr:
		return &Pointer{Elem: FromAST(e.X)}

	case *ast.ArrayType:
		if e.Len == nil {
			return &Slice{Elem: FromAST(e.Elt)}
		}
		return &Array{Len: source(e.Len), Elem: FromAST(e.Elt)}

	case *ast.MapType:
		return &Map{Key: FromAST(e.Key), Value: FromAST(e.Value)}

	case *ast.ChanType:
		dir := ChanBoth
		switch e.Dir {
		case ast.SEND:
			dir = ChanSend
		case ast.RECV:
			dir = ChanRecv
		}
		return &Chan{Dir: dir, Elem: FromAST(e.Value)}

	case *ast.ParenExpr:
		return &Paren{X: FromAST(e.X)}

	case *ast.Ellipsis:
		return &Ellipsis{Elem: FromAST(e.Elt)}
	}

	return literal(expr)
}

// literal 保存源码，同时记录其中出现的包限定名
func literal(node ast.Expr) *Literal {
	lit := &Literal{Src: source(node)}
	seen := make(map[string]bool)
	ast.Inspect(node, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok && !seen[id.Name] {
			seen[id.Name] = true
			lit.Refs = append(lit.Refs, id.Name)
		}
		return true
	})
	return lit
}

// selectorSegments 展开 a.b.c 形式的选择器
func selectorSegments(e *ast.SelectorExpr) ([]Segment, bool) {
	switch x := e.X.(type) {
	case *ast.Ident:
		return []Segment{{Name: x.Name}, {Name: e.Sel.Name}}, true
	case *ast.SelectorExpr:
		head, ok := selectorSegments(x)
		if !ok {
			return nil, false
		}
		return append(head, Segment{Name: e.Sel.Name}), true
	default:
		return nil, false
	}
}

// withArgs 把泛型参数挂到路径的最后一段
func withArgs(base ast.Expr, indices []ast.Expr, whole ast.Expr) Expr {
	p, ok := FromAST(base).(*Path)
	if !ok || len(p.Segments) == 0 {
		return literal(whole)
	}

	args := make([]Arg, len(indices))
	for i, idx := range indices {
		if isTypeExpr(idx) {
			args[i] = Arg{Type: FromAST(idx)}
		} else {
			args[i] = Arg{Value: source(idx)}
		}
	}

	last := len(p.Segments) - 1
	p.Segments[last].Args = args
	return p
}

// isTypeExpr 从语法上判断表达式能否出现在类型位置
// 标识符无法在语法层面区分类型与常量，一律视为类型
func isTypeExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.StarExpr, *ast.ArrayType, *ast.MapType,
		*ast.ChanType, *ast.FuncType, *ast.StructType, *ast.InterfaceType,
		*ast.IndexExpr, *ast.IndexListExpr:
		return true
	case *ast.ParenExpr:
		return isTypeExpr(e.X)
	default:
		return false
	}
}

func source(node ast.Node) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, token.NewFileSet(), node); err != nil {
		return ""
	}
	return buf.String()
}

// Parse 解析一段 Go 类型文本
func Parse(src string) (Expr, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, err
	}
	return FromAST(expr), nil
}

// Qualifiers 收集表达式中引用的包限定名（多段路径的首段），按出现顺序去重
func Qualifiers(expr Expr) []string {
	var result []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	Walk(expr, func(e Expr) {
		switch x := e.(type) {
		case *Path:
			if len(x.Segments) >= 2 {
				add(x.Segments[0].Name)
			}
		case *Literal:
			for _, name := range x.Refs {
				add(name)
			}
		}
	})
	return result
}

// Walk 先序遍历表达式树
func Walk(expr Expr, fn func(Expr)) {
	if expr == nil {
		return
	}
	fn(expr)
	switch e := expr.(type) {
	case *Path:
		for _, seg := range e.Segments {
			for _, a := range seg.Args {
				Walk(a.Type, fn)
			}
		}
	case *Pointer:
		Walk(e.Elem, fn)
	case *Slice:
		Walk(e.Elem, fn)
	case *Array:
		Walk(e.Elem, fn)
	case *Map:
		Walk(e.Key, fn)
		Walk(e.Value, fn)
	case *Chan:
		Walk(e.Elem, fn)
	case *Paren:
		Walk(e.X, fn)
	case *Ellipsis:
		Walk(e.Elem, fn)
	}
}

// Qualify 返回重写包限定名后的副本，原树不变
//   - rename 作用于多段路径的首段（包限定名）
//   - bare 为单段路径提供包限定名，用于把点导入引入的名字改写为显式限定
//
// Literal 节点原样保留
func Qualify(expr Expr, rename func(string) string, bare func(string) (string, bool)) Expr {
	q := func(e Expr) Expr { return Qualify(e, rename, bare) }

	switch e := expr.(type) {
	case *Path:
		segs := make([]Segment, len(e.Segments))
		for i, seg := range e.Segments {
			segs[i] = Segment{Name: seg.Name}
			if seg.Args != nil {
				segs[i].Args = make([]Arg, len(seg.Args))
				for j, a := range seg.Args {
					segs[i].Args[j] = Arg{Value: a.Value}
					if a.Type != nil {
						segs[i].Args[j].Type = q(a.Type)
					}
				}
			}
		}
		switch {
		case len(segs) >= 2 && rename != nil:
			segs[0].Name = rename(segs[0].Name)
		case len(segs) == 1 && bare != nil:
			if pkg, ok := bare(segs[0].Name); ok {
				segs = append([]Segment{{Name: pkg}}, segs...)
			}
		}
		return &Path{Segments: segs}
	case *Pointer:
		return &Pointer{Elem: q(e.Elem)}
	case *Slice:
		return &Slice{Elem: q(e.Elem)}
	case *Array:
		return &Array{Len: e.Len, Elem: q(e.Elem)}
	case *Map:
		return &Map{Key: q(e.Key), Value: q(e.Value)}
	case *Chan:
		return &Chan{Dir: e.Dir, Elem: q(e.Elem)}
	case *Paren:
		return &Paren{X: q(e.X)}
	case *Ellipsis:
		return &Ellipsis{Elem: q(e.Elem)}
	default:
		return expr
	}
}
