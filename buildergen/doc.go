// Package buildergen 为标注了 @Builder 的结构体生成构建器。
//
// 对于
//
//	import . "github.com/samber/mo"
//
//	// @Builder
//	type Person struct {
//		Name string
//		Age  Option[uint32]
//	}
//
// 生成
//
//	type PersonBuilder struct {
//		name mo.Option[string]
//		age  mo.Option[uint32]
//	}
//
//	func (Person) Builder() *PersonBuilder
//	func (b *PersonBuilder) Name(v string) *PersonBuilder
//	func (b *PersonBuilder) Age(v uint32) *PersonBuilder
//	func (b *PersonBuilder) Build() (Person, error)
//
// 类型为 Option[T] 的字段是可选字段，setter 接收 T，Build 时未设置则保持为空；
// 其余字段都是必填字段，任何一个未设置时 Build 返回 buildkit.ErrMissingField。
// Build 不修改构建器，可以重复调用。
//
// 判断可选字段只看类型名：首段名字为 Option 且恰好带一个类型参数。
// mo.Option[T] 这种带包名的写法、(Option[T])、*Option[T] 都按必填处理。
// 生成代码假定 Option 就是 github.com/samber/mo 的 Option（点导入或类型别名）。
package buildergen
