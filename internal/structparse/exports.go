package structparse

import (
	"go/ast"
	"go/parser"
	"go/token"
	"slices"
)

// ExportedTypes 收集目录中声明的导出类型名（不递归，跳过测试文件）
// 用于确定点导入引入了哪些名字
func ExportedTypes(dir string) ([]string, error) {
	files, err := findGoFiles(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, file := range files {
		node, err := parser.ParseFile(token.NewFileSet(), file, nil, parser.SkipObjectResolution)
		if err != nil {
			continue
		}
		for _, decl := range node.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.IsExported() {
					names = append(names, ts.Name.Name)
				}
			}
		}
	}

	slices.Sort(names)
	return slices.Compact(names), nil
}
