// Package pkgresolver 把导入路径解析为真实的包名。
//
// 包名不一定等于导入路径的最后一段（例如目录 gg 中声明 package g2，
// 或 github.com/samber/mo/v2 这类带版本后缀的路径），生成代码时必须使用真实包名。
package pkgresolver

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Resolver 包名解析器
type Resolver struct {
	projectRoot string // 包含 go.mod 的目录
	moduleOnce  sync.Once
	modulePath  string

	cache sync.Map // importPath -> pkgName
}

// New 创建解析器，projectRoot 可以为空
func New(projectRoot string) *Resolver {
	return &Resolver{projectRoot: projectRoot}
}

// PackageName 获取导入路径对应的真实包名
//
//	"fmt"                          -> "fmt"
//	"net/http"                     -> "http"
//	"github.com/samber/mo"         -> "mo"
//	".../testdata/gg"              -> "g2" (目录 gg 中声明 package g2)
//
// 无法定位到源码时退化为导入路径的最后一段（去掉 /vN 版本后缀）
func (r *Resolver) PackageName(importPath string) string {
	if v, ok := r.cache.Load(importPath); ok {
		return v.(string)
	}

	name := ""
	if dir, err := r.Dir(importPath); err == nil {
		name, _ = ReadPackageName(dir)
	}
	if name == "" {
		name = GuessPackageName(importPath)
	}

	r.cache.Store(importPath, name)
	return name
}

// Dir 将导入路径解析为磁盘目录：标准库 > 项目内部 > 模块缓存
func (r *Resolver) Dir(importPath string) (string, error) {
	if importPath == "" {
		return "", fmt.Errorf("导入路径为空")
	}
	if IsStdLib(importPath) {
		return filepath.Join(goroot(), "src", filepath.FromSlash(importPath)), nil
	}

	if mod := r.module(); mod != "" {
		if importPath == mod {
			return r.projectRoot, nil
		}
		if rel, ok := strings.CutPrefix(importPath, mod+"/"); ok {
			return filepath.Join(r.projectRoot, filepath.FromSlash(rel)), nil
		}
	}

	return findInModCache(importPath)
}

func (r *Resolver) module() string {
	r.moduleOnce.Do(func() {
		if r.projectRoot == "" {
			return
		}
		r.modulePath, _ = ModulePath(r.projectRoot)
	})
	return r.modulePath
}

// GuessPackageName 按约定从导入路径推断包名
func GuessPackageName(importPath string) string {
	base := path.Base(importPath)
	if isMajorVersion(base) {
		if parent := path.Dir(importPath); parent != "." && parent != "/" {
			base = path.Base(parent)
		}
	}
	if i := strings.LastIndex(base, ".v"); i > 0 && isMajorVersion(base[i+1:]) {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	base = strings.TrimSuffix(base, ".go")
	return strings.ReplaceAll(base, "-", "")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ReadPackageName 读取目录中第一个非测试 Go 文件的 package 声明
func ReadPackageName(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("读取目录失败 %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(token.NewFileSet(), filepath.Join(dir, name), nil, parser.PackageClauseOnly)
		if err != nil {
			return "", fmt.Errorf("解析文件 %s 失败: %w", name, err)
		}
		return f.Name.Name, nil
	}

	return "", fmt.Errorf("目录 %s 中没有找到 Go 源文件", dir)
}

// ModulePath 从 go.mod 读取模块路径
func ModulePath(projectRoot string) (string, error) {
	content, err := os.ReadFile(filepath.Join(projectRoot, "go.mod"))
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(content), "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "module "); ok {
			return strings.Trim(strings.TrimSpace(rest), `"`), nil
		}
	}
	return "", fmt.Errorf("未在 go.mod 中找到模块名称")
}

// FindModuleRoot 从 dir 向上查找包含 go.mod 的目录
func FindModuleRoot(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
