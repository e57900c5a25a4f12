package buildergen

import "github.com/donutnomad/gobuilder/internal/typeexpr"

// Kind 字段分类
type Kind int

const (
	Required Kind = iota
	Optional
)

func (k Kind) String() string {
	if k == Optional {
		return "optional"
	}
	return "required"
}

// Classification 字段分类结果
// Optional 时 Type 为 Option[T] 中的 T，Required 时为声明类型本身
type Classification struct {
	Kind Kind
	Type typeexpr.Expr
}

// optionName 只按名字匹配，不解析它实际指向的类型
const optionName = "Option"

// Classify 对字段的声明类型分类
//
//	Option[T]        -> Optional(T)
//	mo.Option[T]     -> Required，首段是包名
//	Option           -> Required，没有类型参数
//	Option[K, V]     -> Required，参数个数不为 1
//	Option[3]        -> Required，参数不是类型
//	(Option[T])      -> Required，括号类型
//	*Option[T]       -> Required
func Classify(t typeexpr.Expr) Classification {
	required := Classification{Kind: Required, Type: t}

	p, ok := t.(*typeexpr.Path)
	if !ok {
		return required
	}
	head, ok := p.Head()
	if !ok || head.Name != optionName || len(head.Args) != 1 || !head.Args[0].IsType() {
		return required
	}
	return Classification{Kind: Optional, Type: head.Args[0].Type}
}
