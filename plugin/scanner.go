package plugin

import (
	"bufio"
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"go.uber.org/multierr"
)

// DirectiveName 包级配置指令名，写作 //go:gobuilder: ...
const DirectiveName = "go:gobuilder:"

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行 AST 解析
type Scanner struct {
	workers int
	logger  *log.Logger

	// 注解过滤器（可选）
	annotationFilter []string
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScannerLogger(l *log.Logger) ScannerOption {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// quickMatchRegex 快速匹配注解的正则
var quickMatchRegex = regexp.MustCompile(`@(\w+)`)

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/... file.go
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	allFiles, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}

	empty := &ScanResult{PackageConfigs: make(map[string]*PackageConfig)}
	if len(allFiles) == 0 {
		return empty, nil
	}

	// ========== 第一阶段：快速匹配 ==========
	matched := runParallel(ctx, s.workers, allFiles, func(file string) (string, bool) {
		ok, err := s.QuickMatchFile(file)
		return file, err == nil && ok
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return empty, nil
	}

	// ========== 第二阶段：AST 解析 ==========
	// 带注解的文件解析失败时整个扫描失败，不能静默漏掉目标
	type parseOutcome struct {
		result *fileResult
		err    error
	}
	outcomes := runParallel(ctx, s.workers, matched, func(file string) (parseOutcome, bool) {
		r, err := s.parseFile(file)
		return parseOutcome{result: r, err: err}, true
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs error
	parsed := make([]*fileResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			errs = multierr.Append(errs, o.err)
			continue
		}
		parsed = append(parsed, o.result)
	}
	if errs != nil {
		return nil, errs
	}

	return s.merge(parsed), nil
}

// runParallel 用固定数量的 worker 并行处理输入，输出顺序与输入顺序一致
func runParallel[In, Out any](ctx context.Context, workers int, inputs []In, fn func(In) (Out, bool)) []Out {
	type item struct {
		out Out
		ok  bool
	}
	results := make([]item, len(inputs))
	idxCh := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxCh {
				out, ok := fn(inputs[idx])
				results[idx] = item{out: out, ok: ok}
			}
		}()
	}

feed:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break feed
		case idxCh <- i:
		}
	}
	close(idxCh)
	wg.Wait()

	var outs []Out
	for _, r := range results {
		if r.ok {
			outs = append(outs, r.out)
		}
	}
	return outs
}

// QuickMatchFile 快速检查文件是否包含注解或 go:gobuilder 配置
// 用于 dev 模式判断文件是否需要触发代码生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		// 只检查注释行
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") {
			continue
		}

		if strings.Contains(trimmed, DirectiveName) {
			return true, nil
		}

		for _, match := range quickMatchRegex.FindAllStringSubmatch(trimmed, -1) {
			if len(s.annotationFilter) == 0 || slices.Contains(s.annotationFilter, match[1]) {
				return true, nil
			}
		}
	}

	return false, scanner.Err()
}

// fileResult 单个文件的解析结果
type fileResult struct {
	structs   []*AnnotatedTarget
	types     []*AnnotatedTarget
	pkgConfig *PackageConfig
}

// merge 合并所有文件的解析结果，同一包目录的配置合并为一份
func (s *Scanner) merge(files []*fileResult) *ScanResult {
	result := &ScanResult{PackageConfigs: make(map[string]*PackageConfig)}

	for _, r := range files {
		result.Structs = append(result.Structs, r.structs...)
		result.Types = append(result.Types, r.types...)
		if r.pkgConfig == nil {
			continue
		}

		pkgDir := r.pkgConfig.PackageDir
		existing, ok := result.PackageConfigs[pkgDir]
		if !ok {
			result.PackageConfigs[pkgDir] = r.pkgConfig
			continue
		}
		if r.pkgConfig.DefaultOutput != "" {
			if existing.DefaultOutput != "" && existing.DefaultOutput != r.pkgConfig.DefaultOutput {
				s.logger.Warn("包中存在多个不同的默认输出配置，使用后发现的配置", "package", pkgDir)
			}
			existing.DefaultOutput = r.pkgConfig.DefaultOutput
		}
		for k, v := range r.pkgConfig.PluginOutputs {
			if old, ok := existing.PluginOutputs[k]; ok && old != v {
				s.logger.Warn("插件存在多个不同的输出配置，使用后发现的配置", "package", pkgDir, "plugin", k)
			}
			existing.PluginOutputs[k] = v
		}
	}

	return result
}

// parseFile AST 解析单个文件
// 生成文件（带 "Code generated ... DO NOT EDIT." 头）不参与扫描
func (s *Scanner) parseFile(filePath string) (*fileResult, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	result := &fileResult{}
	if ast.IsGenerated(file) {
		return result, nil
	}

	result.pkgConfig = s.parsePackageConfig(file, filePath)

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		s.parseTypeDecl(fset, filePath, file.Name.Name, gen, result)
	}

	return result, nil
}

// parseTypeDecl 解析类型声明
// 注解可以写在 type 关键字上方，也可以写在分组声明中的单个类型上方
func (s *Scanner) parseTypeDecl(fset *token.FileSet, filePath, packageName string, decl *ast.GenDecl, result *fileResult) {
	declAnnotations := s.annotationsOf(decl.Doc)

	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		annotations := s.annotationsOf(typeSpec.Doc)
		if len(annotations) == 0 {
			annotations = declAnnotations
		}
		if len(annotations) == 0 {
			continue
		}

		target := &Target{
			Kind:        TargetType,
			Name:        typeSpec.Name.Name,
			PackageName: packageName,
			FilePath:    filePath,
			Position:    fset.Position(typeSpec.Pos()),
			Node:        typeSpec,
		}
		at := &AnnotatedTarget{Target: target, Annotations: annotations}

		if _, isStruct := typeSpec.Type.(*ast.StructType); isStruct && !typeSpec.Assign.IsValid() {
			target.Kind = TargetStruct
			result.structs = append(result.structs, at)
		} else {
			result.types = append(result.types, at)
		}
	}
}

func (s *Scanner) annotationsOf(doc *ast.CommentGroup) []*Annotation {
	if doc == nil {
		return nil
	}
	annotations := ParseAnnotations(doc.Text())
	if len(s.annotationFilter) > 0 {
		annotations = FilterByNames(annotations, s.annotationFilter...)
	}
	return annotations
}

// collectFiles 收集所有需要扫描的文件
func (s *Scanner) collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...") || pattern == "..."
		pattern = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
		if pattern == "" {
			pattern = "."
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(absPath, ".go") {
				add(absPath)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == absPath {
					return nil
				}
				name := d.Name()
				if !recursive || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
					name == "vendor" || name == "testdata" {
					return filepath.SkipDir
				}
				return nil
			}
			if isSourceFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// isSourceFile 是否为需要扫描的源文件，测试文件和本工具生成的文件除外
func isSourceFile(path string) bool {
	return strings.HasSuffix(path, ".go") &&
		!strings.HasSuffix(path, "_test.go") &&
		!strings.HasSuffix(path, "_builder.go")
}

// ScanWithFilter 使用默认配置扫描，只保留指定注解
func ScanWithFilter(ctx context.Context, annotations []string, patterns ...string) (*ScanResult, error) {
	return NewScanner(WithAnnotationFilter(annotations...)).Scan(ctx, patterns...)
}

// directiveRegex 匹配 go:gobuilder: 指令
// 支持两种格式：//go:gobuilder: 和 // go:gobuilder:
var directiveRegex = regexp.MustCompile(regexp.QuoteMeta(DirectiveName) + `\s*(.*)`)

// parsePackageConfig 解析包级 go:gobuilder: 配置
// 支持格式:
//
//	//go:gobuilder: -output `$FILE_gen`
//	// go:gobuilder: plugin:builder -output `builders`
func (s *Scanner) parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var lines []string

	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimSpace(text)

			if matches := directiveRegex.FindStringSubmatch(text); len(matches) > 1 {
				lines = append(lines, matches[1])
			}
		}
	}

	if len(lines) == 0 {
		return nil
	}
	if len(lines) > 1 {
		s.logger.Warn("文件定义了多个 "+DirectiveName+" 指令，将被忽略", "file", filePath)
		return nil
	}

	return parseDirectiveLine(lines[0], filePath)
}

// parseDirectiveLine 解析单行配置
// 格式:
//
//	-output `xxx`                                      // 默认输出
//	plugin:builder -output `xxx` plugin:other -output `yyy`  // 插件特定输出
func parseDirectiveLine(line string, filePath string) *PackageConfig {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	config := &PackageConfig{
		PackageDir:    filepath.Dir(filePath),
		PluginOutputs: make(map[string]string),
	}

	parts := splitDirectiveArgs(line)

	var currentPlugin string
	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if name, ok := strings.CutPrefix(part, "plugin:"); ok {
			currentPlugin = strings.ToLower(name)
		} else if part == "-output" && i+1 < len(parts) {
			i++
			output := trimQuotes(parts[i])
			if currentPlugin == "" {
				config.DefaultOutput = output
			} else {
				config.PluginOutputs[currentPlugin] = output
			}
		}
	}

	if config.DefaultOutput == "" && len(config.PluginOutputs) == 0 {
		return nil
	}

	return config
}

// splitDirectiveArgs 按空白分割参数，引号内的空格保留
func splitDirectiveArgs(line string) []string {
	var parts []string
	var current strings.Builder
	var quote byte

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == 0 && (c == '`' || c == '"' || c == '\''):
			quote = c
			current.WriteByte(c)
		case quote != 0 && c == quote:
			quote = 0
			current.WriteByte(c)
		case quote == 0 && (c == ' ' || c == '\t'):
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// trimQuotes 去除引号
func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '`' || first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
