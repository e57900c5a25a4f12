package structparse

import (
	"os"
	"sync"

	"github.com/donutnomad/gobuilder/internal/pkgresolver"
)

// PackageResolver 包名解析器接口
type PackageResolver interface {
	PackageName(importPath string) string
}

// ParseContext 解析上下文，持有包名解析器
type ParseContext struct {
	resolver     PackageResolver
	projectRoot  string
	resolverOnce sync.Once
}

// NewParseContext 创建解析上下文（从工作目录向上查找项目根目录）
func NewParseContext() *ParseContext {
	wd, _ := os.Getwd()
	root, _ := pkgresolver.FindModuleRoot(wd)
	return &ParseContext{projectRoot: root}
}

// NewParseContextWithRoot 创建解析上下文（指定项目根目录）
func NewParseContextWithRoot(projectRoot string) *ParseContext {
	return &ParseContext{projectRoot: projectRoot}
}

// NewParseContextWithResolver 创建解析上下文（指定 PackageResolver，用于测试）
func NewParseContextWithResolver(resolver PackageResolver) *ParseContext {
	return &ParseContext{resolver: resolver}
}

// Resolver 获取包解析器（延迟初始化）
func (c *ParseContext) Resolver() PackageResolver {
	c.resolverOnce.Do(func() {
		if c.resolver == nil {
			c.resolver = pkgresolver.New(c.projectRoot)
		}
	})
	return c.resolver
}
