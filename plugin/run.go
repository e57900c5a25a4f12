package plugin

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/donutnomad/gg"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/donutnomad/gobuilder/internal/utils"
)

// GeneratedHeader 生成文件的头部注释
const GeneratedHeader = "Code generated by gobuilder. DO NOT EDIT."

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Verbose  bool
	Output   string // 命令行指定的默认输出路径（最低优先级）
	Async    bool   // 是否并行执行生成器
	DryRun   bool   // 只输出 diff，不写文件

	Logger *log.Logger // 为空时使用 log.Default()
	Stdout io.Writer   // diff 输出位置，为空时使用 os.Stdout
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
	TargetCount      int           // 目标数量
	FileCount        int           // 写入（或 dry-run 时有变化）的文件数量
	UnchangedCount   int           // 内容未变化的文件数量
	Files            []string      // 写入（或 dry-run 时有变化）的文件路径
}

// Run 使用指定注册表运行代码生成
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	_, err := RunWithOptionsAndStats(ctx, &RunOptions{Registry: registry, Patterns: patterns})
	return err
}

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// RunWithOptionsAndStats 带选项运行并返回统计信息
//  1. 扫描指定路径的注解
//  2. 将目标分发给对应的生成器，解析注解参数
//  3. 执行生成器
//  4. 合并同一文件的 gg 定义并格式化
//  5. 写入文件（或输出 diff）
//
// 第 1~4 步中出现任何错误都不会写入任何文件，返回的错误为所有错误的组合
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{}

	registry := lo.Ternary(opts.Registry != nil, opts.Registry, globalRegistry)
	logger := lo.Ternary(opts.Logger != nil, opts.Logger, log.Default())
	stdout := lo.Ternary[io.Writer](opts.Stdout != nil, opts.Stdout, os.Stdout)
	patterns := lo.Ternary(len(opts.Patterns) > 0, opts.Patterns, []string{"./..."})

	annotations := registry.Annotations()
	if len(annotations) == 0 {
		return nil, fmt.Errorf("没有已注册的生成器")
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(
		WithAnnotationFilter(annotations...),
		WithScannerLogger(logger),
	)
	result, err := scanner.Scan(ctx, patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)
	stats.TargetCount = len(result.All())

	if stats.TargetCount == 0 {
		logger.Debug("没有找到任何带注解的目标")
		stats.TotalDuration = time.Since(totalStart)
		return stats, nil
	}
	logger.Debug("扫描完成", "targets", stats.TargetCount, "elapsed", stats.ScanDuration)

	generateStart := time.Now()

	dispatch, errs := registry.DispatchTargets(result)

	// 按优先级排序生成器名称（优先级数字越小越靠前）
	genNames := lo.Keys(dispatch)
	slices.SortFunc(genNames, func(a, b string) int {
		genA, _ := registry.GetByName(a)
		genB, _ := registry.GetByName(b)
		if d := genA.Priority() - genB.Priority(); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	// 先串行解析所有目标的参数（避免并发修改共享数据）
	for _, genName := range genNames {
		gen, _ := registry.GetByName(genName)
		errs = multierr.Append(errs, parseTargetParams(gen, dispatch[genName]))
	}

	genResults := executeGenerators(registry, dispatch, genNames, result.PackageConfigs, opts, logger)

	// 按优先级顺序收集 gg 定义，按输出路径分组
	fileDefinitions := make(map[string][]*gg.Generator)
	fileGenNames := make(map[string][]string)
	for _, genName := range genNames {
		item := genResults[genName]
		if item.err != nil {
			errs = multierr.Append(errs, fmt.Errorf("生成器 %s 执行失败: %w", genName, item.err))
			continue
		}
		if item.result == nil {
			continue
		}
		errs = multierr.Append(errs, multierr.Combine(item.result.Errors...))

		paths := lo.Keys(item.result.Definitions)
		slices.Sort(paths)
		for _, path := range paths {
			fileDefinitions[path] = append(fileDefinitions[path], item.result.Definitions[path])
			fileGenNames[path] = append(fileGenNames[path], genName)
		}
	}

	// 合并并格式化，全部成功后再写入
	outputs := make(map[string][]byte, len(fileDefinitions))
	for path, definitions := range fileDefinitions {
		merged, err := mergeDefinitionsWithSeparator(definitions, fileGenNames[path])
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err))
			continue
		}
		formatted, err := utils.Format(path, merged.Bytes())
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		outputs[path] = formatted
	}

	stats.GenerateDuration = time.Since(generateStart)

	if errs != nil {
		for _, e := range multierr.Errors(errs) {
			logger.Error(e.Error())
		}
		stats.TotalDuration = time.Since(totalStart)
		return stats, fmt.Errorf("生成过程中出现 %d 个错误，未写入任何文件: %w", len(multierr.Errors(errs)), errs)
	}

	paths := lo.Keys(outputs)
	slices.Sort(paths)
	for _, path := range paths {
		changed, err := emit(path, outputs[path], opts.DryRun, stdout)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("写入文件 %s 失败: %w", path, err))
			continue
		}
		if !changed {
			stats.UnchangedCount++
			logger.Debug("文件未变化", "file", path)
			continue
		}
		stats.FileCount++
		stats.Files = append(stats.Files, path)
		if !opts.DryRun {
			logger.Info("生成文件", "file", path)
		}
	}

	stats.TotalDuration = time.Since(totalStart)
	return stats, errs
}

// parseTargetParams 把目标上属于该生成器的注解参数解析到参数结构体
func parseTargetParams(gen Generator, targets []*AnnotatedTarget) error {
	var errs error
	for _, target := range targets {
		params := gen.NewParams()
		if params == nil {
			continue // 该生成器不需要参数
		}
		if reflect.ValueOf(params).Kind() != reflect.Ptr {
			return fmt.Errorf("生成器 %s 的 NewParams() 必须返回指针类型, 得到: %T", gen.Name(), params)
		}

		ann, ok := lo.Find(target.Annotations, func(a *Annotation) bool {
			return slices.Contains(gen.Annotations(), a.Name)
		})
		if !ok {
			continue
		}

		if err := ParseAnnotationParams(ann, params, gen.ParamDefs()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", target.Target.Position, err))
			continue
		}
		target.ParsedParams = reflect.ValueOf(params).Elem().Interface()
	}
	return errs
}

type genResultItem struct {
	result *GenerateResult
	err    error
}

// executeGenerators 执行生成器，Async 时每个生成器一个 goroutine
func executeGenerators(registry *Registry, dispatch map[string][]*AnnotatedTarget, genNames []string, pkgConfigs map[string]*PackageConfig, opts *RunOptions, logger *log.Logger) map[string]genResultItem {
	execute := func(genName string) (item genResultItem) {
		// 生成器内部 panic 转为该生成器的错误，不影响其他 goroutine
		defer func() {
			if r := recover(); r != nil {
				item = genResultItem{err: fmt.Errorf("panic: %v", r)}
			}
		}()

		gen, ok := registry.GetByName(genName)
		if !ok {
			return genResultItem{}
		}
		targets := dispatch[genName]

		start := time.Now()
		genResult, err := gen.Generate(&GenerateContext{
			Targets:        targets,
			PackageConfigs: pkgConfigs,
			DefaultOutput:  opts.Output,
			Verbose:        opts.Verbose,
			Logger:         logger,
		})
		logger.Debug("执行生成器", "generator", genName, "targets", len(targets), "elapsed", time.Since(start))
		return genResultItem{result: genResult, err: err}
	}

	results := make(map[string]genResultItem, len(genNames))
	if !opts.Async {
		for _, genName := range genNames {
			results[genName] = execute(genName)
		}
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, genName := range genNames {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item := execute(genName)
			mu.Lock()
			results[genName] = item
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

// emit 写入文件或输出 diff，返回内容是否有变化
func emit(path string, content []byte, dryRun bool, stdout io.Writer) (bool, error) {
	diff, err := unifiedDiff(path, content)
	if err != nil {
		return false, err
	}
	if diff == "" {
		return false, nil
	}
	if dryRun {
		_, err := io.WriteString(stdout, diff)
		return true, err
	}
	return true, utils.WriteFile(path, content)
}

// mergeDefinitionsWithSeparator 合并多个 gg.Generator 定义到一个文件，并添加分隔符
func mergeDefinitionsWithSeparator(definitions []*gg.Generator, genNames []string) (*gg.Generator, error) {
	if len(definitions) == 0 {
		return nil, fmt.Errorf("没有定义需要合并")
	}

	merged := gg.New()
	merged.SetHeader(GeneratedHeader)

	var pkgName string
	for _, def := range definitions {
		if def.PackageName() == "" {
			continue
		}
		if pkgName == "" {
			pkgName = def.PackageName()
		} else if pkgName != def.PackageName() {
			return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, def.PackageName())
		}
	}
	if pkgName != "" {
		merged.SetPackage(pkgName)
	}

	// 直接使用 Merge，它会正确处理 imports 和别名
	for i, def := range definitions {
		genName := "unknown"
		if i < len(genNames) {
			genName = genNames[i]
		}
		merged.Body().AddLine()
		merged.Body().AddString(fmt.Sprintf("// ================ %s ================", genName))
		merged.Body().AddLine()

		merged.Merge(def)
	}

	return merged, nil
}
