package plugin

import "reflect"

// Generator 把带注解的类型转换为 gg 定义。gobuilder 只注册 @Builder 一个生成器，
// 运行流程（扫描、参数解析、合并、格式化、写入）由 RunWithOptionsAndStats 负责
type Generator interface {
	Name() string

	// Annotations 绑定的注解名，不带 @；同一注解只能属于一个生成器
	Annotations() []string

	// SupportedTargets 为空或不包含目标的形态时，DispatchTargets 直接报错
	SupportedTargets() []TargetKind

	ParamDefs() []ParamDef

	// NewParams 返回参数结构体指针，解析结果以值的形式放入 AnnotatedTarget.ParsedParams
	// 返回 nil 时不解析参数
	NewParams() any

	// Priority 越小越先执行，合并到同一文件时也排在前面
	Priority() int

	// Generate 出错的目标记录在 GenerateResult.Errors，任何错误都会让本次运行不写文件
	Generate(ctx *GenerateContext) (*GenerateResult, error)
}

const defaultPriority = 100

// BaseGenerator 实现 Generator 中除 Generate 以外的方法
type BaseGenerator struct {
	name        string
	annotations []string
	targets     []TargetKind
	priority    int

	params    reflect.Type // 参数结构体类型，nil 表示没有参数
	paramDefs []ParamDef
}

func NewBaseGenerator(name string, annotations []string, targets []TargetKind) *BaseGenerator {
	return &BaseGenerator{
		name:        name,
		annotations: annotations,
		targets:     targets,
		priority:    defaultPriority,
	}
}

// NewBaseGeneratorWithParamsStruct 参数由 params 的 param 标签描述，如 BuilderParams{}
func NewBaseGeneratorWithParamsStruct(name string, annotations []string, targets []TargetKind, params any) *BaseGenerator {
	g := NewBaseGenerator(name, annotations, targets)
	if params == nil {
		return g
	}
	g.params = reflect.TypeOf(params)
	if g.params.Kind() == reflect.Ptr {
		g.params = g.params.Elem()
	}
	g.paramDefs = ParseParamsFromStruct(params)
	return g
}

func (g *BaseGenerator) Name() string                   { return g.name }
func (g *BaseGenerator) Annotations() []string          { return g.annotations }
func (g *BaseGenerator) SupportedTargets() []TargetKind { return g.targets }
func (g *BaseGenerator) ParamDefs() []ParamDef          { return g.paramDefs }
func (g *BaseGenerator) Priority() int                  { return g.priority }

func (g *BaseGenerator) NewParams() any {
	if g.params == nil {
		return nil
	}
	return reflect.New(g.params).Interface()
}

// SetPriority @Builder 使用 10，先于默认优先级的生成器
func (g *BaseGenerator) SetPriority(priority int) *BaseGenerator {
	g.priority = priority
	return g
}
