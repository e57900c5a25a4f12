package buildergen

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/gg"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/donutnomad/gobuilder/internal/structparse"
	"github.com/donutnomad/gobuilder/plugin"
)

const (
	generatorName  = "builder"
	annotationName = "Builder"
)

// BuilderParams 定义 Builder 注解支持的参数
type BuilderParams struct {
	Constructor string `param:"name=constructor,required=false,default=Builder,description=记录类型上的构造方法名"`
	Prefix      string `param:"name=prefix,required=false,default=,description=setter 方法名前缀，为空时与字段同名"`
}

// BuilderGenerator 实现 plugin.Generator 接口
type BuilderGenerator struct {
	plugin.BaseGenerator
	parseCtx *structparse.ParseContext
}

// Option 生成器选项
type Option func(*BuilderGenerator)

// WithParseContext 指定结构体解析上下文，默认从工作目录定位项目根目录
func WithParseContext(ctx *structparse.ParseContext) Option {
	return func(g *BuilderGenerator) {
		g.parseCtx = ctx
	}
}

func NewBuilderGenerator(opts ...Option) *BuilderGenerator {
	gen := &BuilderGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParamsStruct(
			generatorName,
			[]string{annotationName},
			[]plugin.TargetKind{plugin.TargetStruct},
			BuilderParams{},
		),
	}
	gen.SetPriority(10)
	for _, opt := range opts {
		opt(gen)
	}
	return gen
}

// targetInfo 单个目标的处理信息
type targetInfo struct {
	record *Record
	opts   SynthOptions
}

// Generate 执行代码生成
func (g *BuilderGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	logger := ctx.Log()

	if len(ctx.Targets) == 0 {
		return result, nil
	}

	parseCtx := g.parseCtx
	if parseCtx == nil {
		parseCtx = structparse.NewParseContext()
	}

	// 按输出文件分组
	fileTargets := make(map[string][]*targetInfo)

	for _, at := range ctx.Targets {
		ann := plugin.GetAnnotation(at.Annotations, annotationName)
		if ann == nil {
			continue
		}

		params := BuilderParams{Constructor: DefaultConstructor}
		if at.ParsedParams != nil {
			var ok bool
			params, ok = at.ParsedParams.(BuilderParams)
			if !ok {
				result.AddError(fmt.Errorf("ParsedParams 类型断言失败: %T", at.ParsedParams))
				continue
			}
		}

		record, err := LoadRecord(parseCtx, at.Target.FilePath, at.Target.Name)
		if err != nil {
			result.AddError(fmt.Errorf("%s: %w", at.Target.Position, err))
			continue
		}

		outputPath, err := plugin.GetOutputPath(at.Target, ann, "$FILE_builder.go",
			ctx.GetPackageConfig(at.Target.FilePath), g.Name(), ctx.DefaultOutput)
		if err != nil {
			result.AddError(err)
			continue
		}
		// 构造方法定义在记录类型上，只能生成到同一个包
		if filepath.Dir(outputPath) != filepath.Dir(at.Target.FilePath) {
			result.AddError(fmt.Errorf("%s: %s 的输出文件 %s 必须与源文件位于同一目录",
				at.Target.Position, at.Target.Name, outputPath))
			continue
		}

		fileTargets[outputPath] = append(fileTargets[outputPath], &targetInfo{
			record: record,
			opts:   SynthOptions{Constructor: params.Constructor, Prefix: params.Prefix},
		})

		logger.Debug(fmt.Sprintf("[%s] 处理结构体 %s -> %s", generatorName, at.Target.Name, outputPath))
	}

	// 按输出路径排序，确保生成顺序一致
	outputPaths := lo.Keys(fileTargets)
	slices.Sort(outputPaths)

	for _, outputPath := range outputPaths {
		targets := fileTargets[outputPath]
		// 同一文件中按结构体名称排序
		slices.SortFunc(targets, func(a, b *targetInfo) int {
			return strings.Compare(a.record.Name, b.record.Name)
		})

		if ctx.Verbose {
			for _, item := range targets {
				logger.Debug(fmt.Sprintf("[%s] %s %s", generatorName, item.record.Name, spew.Sdump(item.opts)))
			}
		}

		gen, err := g.generateDefinition(targets)
		if err != nil {
			result.AddError(fmt.Errorf("生成 %s 失败: %w", outputPath, err))
			continue
		}
		result.AddDefinition(outputPath, gen)
	}

	return result, nil
}

// generateDefinition 为同一输出文件中的一组目标生成 gg 定义
func (g *BuilderGenerator) generateDefinition(targets []*targetInfo) (*gg.Generator, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("没有目标需要生成")
	}

	file := NewFile(targets[0].record.PackageName)

	var errs error
	for i, t := range targets {
		if t.record.PackageName != targets[0].record.PackageName {
			errs = multierr.Append(errs, fmt.Errorf("%s 与 %s 不在同一个包", t.record.Name, targets[0].record.Name))
			continue
		}
		if i > 0 {
			file.Generator().Body().AddLine()
		}
		if err := Synthesize(file, t.record, t.opts); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}

	return file.Generator(), nil
}
