package structparse

import (
	"go/ast"
	"strconv"
)

// extractImports 提取文件的导入信息，真实包名通过解析器读取
func (c *ParseContext) extractImports(file *ast.File) []ImportInfo {
	resolver := c.Resolver()

	imports := make([]ImportInfo, 0, len(file.Imports))
	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		info := ImportInfo{ImportPath: importPath}
		if imp.Name != nil {
			if imp.Name.Name == "_" {
				continue
			}
			info.Alias = imp.Name.Name
		}
		info.PackageName = resolver.PackageName(importPath)
		if info.Dot() {
			info.Exports = c.dotExports(importPath)
		}

		imports = append(imports, info)
	}
	return imports
}

// dirResolver 能把导入路径定位到目录的解析器
type dirResolver interface {
	Dir(importPath string) (string, error)
}

// dotExports 读取点导入包导出的类型名
func (c *ParseContext) dotExports(importPath string) []string {
	dr, ok := c.Resolver().(dirResolver)
	if !ok {
		return nil
	}
	dir, err := dr.Dir(importPath)
	if err != nil {
		return nil
	}
	names, _ := ExportedTypes(dir)
	return names
}
