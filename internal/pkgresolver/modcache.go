package pkgresolver

import (
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"strings"
)

func goroot() string {
	if root := build.Default.GOROOT; root != "" {
		return root
	}
	return os.Getenv("GOROOT")
}

// IsStdLib 判断是否为可导入的标准库包
// 标准库路径的第一段不含点号，且在 $GOROOT/src 下存在对应目录
func IsStdLib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	if first == "" || strings.Contains(first, ".") {
		return false
	}
	for _, part := range strings.Split(importPath, "/") {
		if part == "internal" || part == "vendor" || part == "testdata" {
			return false
		}
	}
	root := goroot()
	if root == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(root, "src", filepath.FromSlash(importPath)))
	return err == nil && info.IsDir()
}

func modCacheDir() (string, error) {
	if dir := os.Getenv("GOMODCACHE"); dir != "" {
		return dir, nil
	}
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("无法获取用户主目录: %w", err)
		}
		gopath = filepath.Join(home, "go")
	}
	return filepath.Join(gopath, "pkg", "mod"), nil
}

// findInModCache 在 GOMODCACHE 中查找导入路径对应的目录
// 从最长前缀开始尝试模块根，命中多个版本时取字典序最大的
func findInModCache(importPath string) (string, error) {
	cache, err := modCacheDir()
	if err != nil {
		return "", err
	}

	parts := strings.Split(importPath, "/")
	for i := len(parts); i >= 1; i-- {
		modPath := strings.Join(parts[:i], "/")
		matches, err := filepath.Glob(filepath.Join(cache, filepath.FromSlash(escapePath(modPath))+"@*"))
		if err != nil || len(matches) == 0 {
			continue
		}
		dir := filepath.Join(matches[len(matches)-1], filepath.Join(parts[i:]...))
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}

	return "", fmt.Errorf("未找到第三方包 %s", importPath)
}

// escapePath 模块缓存的路径转义规则：大写字母替换为 ! 加小写
//
//	github.com/Masterminds/sprig -> github.com/!masterminds/sprig
func escapePath(p string) string {
	var b strings.Builder
	for _, c := range p {
		if c >= 'A' && c <= 'Z' {
			b.WriteByte('!')
			b.WriteRune(c + 'a' - 'A')
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}
