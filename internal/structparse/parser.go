package structparse

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
)

// ParseType 解析指定文件中的类型声明（包级便捷函数）
func ParseType(filename, typeName string) (*TypeInfo, error) {
	return NewParseContext().ParseType(filename, typeName)
}

// ParseType 解析指定文件中的类型声明
func (c *ParseContext) ParseType(filename, typeName string) (*TypeInfo, error) {
	node, err := parser.ParseFile(token.NewFileSet(), filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}

	spec := findTypeSpec(node, typeName)
	if spec == nil {
		return nil, fmt.Errorf("未找到类型 %s", typeName)
	}

	info := &TypeInfo{
		Name:        typeName,
		PackageName: node.Name.Name,
		FilePath:    filename,
		Kind:        kindOf(spec),
		TypeParams:  typeParams(spec),
		Imports:     c.extractImports(node),
	}

	if st, ok := spec.Type.(*ast.StructType); ok && !spec.Assign.IsValid() {
		info.Fields = parseFields(st)
	}

	methods, err := parseMethodsFromPackage(filepath.Dir(filename), typeName)
	if err != nil {
		return nil, err
	}
	info.Methods = methods

	return info, nil
}

// findTypeSpec 查找顶层类型声明
func findTypeSpec(file *ast.File, name string) *ast.TypeSpec {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.Name == name {
				return ts
			}
		}
	}
	return nil
}

func kindOf(spec *ast.TypeSpec) TypeKind {
	if spec.Assign.IsValid() {
		return KindAlias
	}
	switch spec.Type.(type) {
	case *ast.StructType:
		return KindStruct
	case *ast.InterfaceType:
		return KindInterface
	default:
		return KindNamed
	}
}

func typeParams(spec *ast.TypeSpec) []string {
	if spec.TypeParams == nil {
		return nil
	}
	var names []string
	for _, field := range spec.TypeParams.List {
		for _, name := range field.Names {
			names = append(names, name.Name)
		}
	}
	return names
}

// parseFields 按声明顺序展开字段，`A, B int` 会产生两个字段
func parseFields(st *ast.StructType) []FieldInfo {
	var fields []FieldInfo
	for _, field := range st.Fields.List {
		var tag string
		if field.Tag != nil {
			tag = field.Tag.Value
		}
		typeStr := types.ExprString(field.Type)

		if len(field.Names) == 0 {
			fields = append(fields, FieldInfo{
				Name:     embeddedName(field.Type),
				Type:     typeStr,
				Expr:     field.Type,
				Tag:      tag,
				Embedded: true,
			})
			continue
		}

		for _, name := range field.Names {
			fields = append(fields, FieldInfo{
				Name: name.Name,
				Type: typeStr,
				Expr: field.Type,
				Tag:  tag,
			})
		}
	}
	return fields
}

// embeddedName 嵌入字段的隐式字段名：*pkg.T[X] -> T
func embeddedName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.SelectorExpr:
			return e.Sel.Name
		case *ast.Ident:
			return e.Name
		default:
			return types.ExprString(expr)
		}
	}
}
