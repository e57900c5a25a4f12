package structparse

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// parseMethodsFromPackage 从目录中的所有文件收集指定类型的方法
func parseMethodsFromPackage(dir, typeName string) ([]MethodInfo, error) {
	files, err := findGoFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("查找包文件失败: %w", err)
	}

	var all []MethodInfo
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil || !mayContainMethods(content, typeName) {
			continue
		}

		methods, err := parseMethodsFromFile(file, content, typeName)
		if err != nil {
			// 单个文件解析失败不影响其他文件
			continue
		}
		all = append(all, methods...)
	}
	return all, nil
}

// mayContainMethods 快速判断文件是否可能声明了该类型的方法
// 匹配 (u User) / (u *User) / (User) / (u User[T]) 等接收器写法
func mayContainMethods(content []byte, typeName string) bool {
	return bytes.Contains(content, []byte(typeName+")")) ||
		bytes.Contains(content, []byte(typeName+"["))
}

func parseMethodsFromFile(filename string, content []byte, typeName string) ([]MethodInfo, error) {
	node, err := parser.ParseFile(token.NewFileSet(), filename, content, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		absPath = filename
	}
	generated := ast.IsGenerated(node)

	var methods []MethodInfo
	for _, decl := range node.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
			continue
		}
		name, pointer := receiverType(fn.Recv.List[0].Type)
		if name != typeName {
			continue
		}
		methods = append(methods, MethodInfo{
			Name:      fn.Name.Name,
			Pointer:   pointer,
			FilePath:  absPath,
			Generated: generated,
		})
	}
	return methods, nil
}

// receiverType 解析接收器类型名：T / *T / T[K] / *T[K, V]
func receiverType(expr ast.Expr) (string, bool) {
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.IndexExpr:
		expr = e.X
	case *ast.IndexListExpr:
		expr = e.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name, pointer
	}
	return "", pointer
}

// findGoFiles 查找目录中的 Go 文件（不递归，不包含测试文件）
func findGoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}
