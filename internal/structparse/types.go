package structparse

import (
	"go/ast"
	"slices"
)

// TypeKind 类型声明的形态
type TypeKind int

const (
	KindStruct    TypeKind = iota // type X struct{...}
	KindInterface                 // type X interface{...}
	KindAlias                     // type X = Y
	KindNamed                     // type X int, type X []T 等其他定义
)

func (k TypeKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindAlias:
		return "alias"
	default:
		return "named"
	}
}

// ImportInfo 导入信息
type ImportInfo struct {
	Alias       string   // 显式别名（如果有），点导入为 "."
	PackageName string   // 真实包名（从 package 声明读取）
	ImportPath  string   // 完整导入路径
	Exports     []string // 点导入时该包导出的类型名，无法定位源码时为空
}

// Dot 是否为点导入
func (i ImportInfo) Dot() bool { return i.Alias == "." }

// Name 文件中引用该包时使用的名字
func (i ImportInfo) Name() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.PackageName
}

// MethodInfo 方法信息
type MethodInfo struct {
	Name      string // 方法名
	Pointer   bool   // 是否为指针接收器
	FilePath  string // 方法所在文件的绝对路径
	Generated bool   // 所在文件是否为生成文件
}

// FieldInfo 结构体字段信息
type FieldInfo struct {
	Name     string   // 字段名，嵌入字段为类型名
	Type     string   // 字段类型的源码形式
	Expr     ast.Expr // 字段类型的语法树
	Tag      string   // 字段标签（含反引号）
	Embedded bool     // 是否为嵌入字段
}

// TypeInfo 类型声明信息
type TypeInfo struct {
	Name        string       // 类型名称
	PackageName string       // 包名
	FilePath    string       // 声明所在文件路径
	Kind        TypeKind     // 声明形态
	TypeParams  []string     // 类型参数名
	Fields      []FieldInfo  // 字段列表，仅结构体有
	Methods     []MethodInfo // 方法列表
	Imports     []ImportInfo // 声明所在文件的导入
}

// Import 按文件中的引用名查找导入
func (t *TypeInfo) Import(name string) (ImportInfo, bool) {
	for _, imp := range t.Imports {
		if imp.Name() == name {
			return imp, true
		}
	}
	return ImportInfo{}, false
}

// DotProvider 查找提供未限定类型名的点导入
func (t *TypeInfo) DotProvider(name string) (ImportInfo, bool) {
	for _, imp := range t.DotImports() {
		if slices.Contains(imp.Exports, name) {
			return imp, true
		}
	}
	return ImportInfo{}, false
}

// DotImports 点导入列表
func (t *TypeInfo) DotImports() []ImportInfo {
	var result []ImportInfo
	for _, imp := range t.Imports {
		if imp.Dot() {
			result = append(result, imp)
		}
	}
	return result
}

// HasMethod 类型是否已声明指定方法，忽略生成文件中的声明
func (t *TypeInfo) HasMethod(name string) bool {
	for _, m := range t.Methods {
		if m.Name == name && !m.Generated {
			return true
		}
	}
	return false
}
