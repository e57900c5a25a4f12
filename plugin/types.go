package plugin

import (
	"go/ast"
	"go/token"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/donutnomad/gg"
)

// TargetKind 表示注解目标的类型
type TargetKind int

const (
	TargetStruct TargetKind = iota + 1 // 结构体
	TargetType                         // 其他类型声明：接口、别名、命名类型
)

func (k TargetKind) String() string {
	switch k {
	case TargetStruct:
		return "struct"
	case TargetType:
		return "type"
	default:
		return "unknown"
	}
}

// ParamDef 定义注解参数的元信息
type ParamDef struct {
	Name        string // 参数名称
	Required    bool   // 是否必填
	Default     string // 默认值（如果不是必填）
	Description string // 参数描述
}

// Annotation 表示解析后的注解
type Annotation struct {
	Name   string            // 注解名称，如 "Builder"
	Params map[string]string // 注解参数，如 constructor=`New`
	Raw    string            // 原始注解文本
}

// Target 表示注解的目标
type Target struct {
	Kind        TargetKind // 目标类型
	Name        string     // 类型名
	PackageName string     // 包名
	FilePath    string     // 文件路径
	Position    token.Position

	// AST 节点（可选，用于深度解析）
	Node *ast.TypeSpec
}

// Shape 描述类型声明的形态，用于错误信息
func (t *Target) Shape() string {
	if t.Node == nil {
		return t.Kind.String()
	}
	if t.Node.Assign.IsValid() {
		return "alias"
	}
	switch t.Node.Type.(type) {
	case *ast.StructType:
		return "struct"
	case *ast.InterfaceType:
		return "interface"
	default:
		return "named type"
	}
}

// AnnotatedTarget 表示带注解的目标
type AnnotatedTarget struct {
	Target       *Target       // 目标信息
	Annotations  []*Annotation // 注解列表
	ParsedParams any           // 解析后的参数结构体
}

// ScanResult 表示扫描结果
type ScanResult struct {
	Structs []*AnnotatedTarget // 带注解的结构体
	Types   []*AnnotatedTarget // 带注解的非结构体类型

	// PackageConfigs 包级配置
	// key: 包目录
	PackageConfigs map[string]*PackageConfig
}

// All 返回所有带注解的目标
func (r *ScanResult) All() []*AnnotatedTarget {
	result := make([]*AnnotatedTarget, 0, len(r.Structs)+len(r.Types))
	result = append(result, r.Structs...)
	result = append(result, r.Types...)
	return result
}

// ByAnnotation 按注解名称过滤
func (r *ScanResult) ByAnnotation(name string) []*AnnotatedTarget {
	var result []*AnnotatedTarget
	for _, t := range r.All() {
		if HasAnnotation(t.Annotations, name) {
			result = append(result, t)
		}
	}
	return result
}

// GenerateContext 生成上下文，传递给 Generator
type GenerateContext struct {
	Targets        []*AnnotatedTarget        // 该 Generator 需要处理的目标
	PackageConfigs map[string]*PackageConfig // 包级配置，key: 包目录
	DefaultOutput  string                    // 命令行指定的默认输出路径（最低优先级）
	Verbose        bool                      // 详细输出
	Logger         *log.Logger               // 为空时使用 log.Default()
}

// Log 返回生成器使用的日志器
func (c *GenerateContext) Log() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// GetPackageConfig 获取文件所在包的配置
func (c *GenerateContext) GetPackageConfig(filePath string) *PackageConfig {
	if c.PackageConfigs == nil {
		return nil
	}
	return c.PackageConfigs[filepath.Dir(filePath)]
}

// GenerateResult 生成结果
// Generator 返回 gg 定义，由聚合器统一处理
type GenerateResult struct {
	// Definitions 是生成的 gg 定义
	// key: 输出文件路径
	Definitions map[string]*gg.Generator

	// Errors 错误列表，任意一个错误都会阻止写入
	Errors []error

	// Skipped 跳过的数量
	Skipped int
}

// PackageConfig 包级生成配置
// 通过 //go:gobuilder: 注释定义，对整个包目录生效
// 示例:
//
//	//go:gobuilder: -output `$FILE_gen`
//	//go:gobuilder: plugin:builder -output `builders`
type PackageConfig struct {
	PackageDir string // 包目录

	// DefaultOutput 默认输出路径（对所有插件生效）
	DefaultOutput string

	// PluginOutputs 插件特定的输出路径
	// key: 插件名（小写）, value: 输出路径
	PluginOutputs map[string]string
}

// GetPluginOutput 获取指定插件的输出路径
// 优先返回插件特定配置，其次返回默认配置，最后返回空字符串
func (c *PackageConfig) GetPluginOutput(pluginName string) string {
	if c == nil {
		return ""
	}
	if output, ok := c.PluginOutputs[pluginName]; ok {
		return output
	}
	return c.DefaultOutput
}

// NewGenerateResult 创建新的生成结果
func NewGenerateResult() *GenerateResult {
	return &GenerateResult{
		Definitions: make(map[string]*gg.Generator),
	}
}

// AddDefinition 添加 gg 定义
func (r *GenerateResult) AddDefinition(path string, gen *gg.Generator) {
	if r.Definitions == nil {
		r.Definitions = make(map[string]*gg.Generator)
	}
	r.Definitions[path] = gen
}

// AddError 添加错误
func (r *GenerateResult) AddError(err error) {
	r.Errors = append(r.Errors, err)
}

// HasErrors 检查是否有错误
func (r *GenerateResult) HasErrors() bool {
	return len(r.Errors) > 0
}
