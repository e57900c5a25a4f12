package main

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/donutnomad/gobuilder/internal/utils"
	"github.com/donutnomad/gobuilder/plugin"
)

// DevOptions dev 命令选项
type DevOptions struct {
	Patterns []string      // 监听的路径模式
	Verbose  bool          // 详细输出
	Output   string        // 默认输出路径
	Async    bool          // 异步执行
	Debounce time.Duration // 防抖动时间
}

// devRunner 处理文件变动的核心逻辑
type devRunner struct {
	opts     *DevOptions
	registry *plugin.Registry
	watcher  *fsnotify.Watcher
	scanner  *plugin.Scanner
	logger   *log.Logger
	ctx      context.Context // 用于响应退出信号

	// 防抖动相关
	mu          sync.Mutex
	pendingDirs map[string]*time.Timer // key: 包目录路径

	// 每次生成完成后调用，测试用
	onGenerate func(pkgDir string, stats *plugin.RunStats, err error)
}

// runDev 启动开发模式
func runDev(logger *log.Logger, patterns []string) error {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		return fmt.Errorf("没有已注册的生成器")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return dev(ctx, registry, logger, &DevOptions{
		Patterns: patterns,
		Verbose:  *verbose,
		Output:   outputPath(),
		Async:    *async,
		Debounce: 2 * time.Second,
	})
}

// dev 监听目录直到 ctx 结束
func dev(ctx context.Context, registry *plugin.Registry, logger *log.Logger, opts *DevOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer watcher.Close()

	runner := newDevRunner(ctx, registry, watcher, logger, opts)
	defer runner.stop()

	dirs, err := collectWatchDirs(opts.Patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("没有找到需要监听的目录")
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
		}
		logger.Debug("监听目录", "dir", dir)
	}

	logger.Info("开发模式已启动，按 Ctrl+C 退出", "dirs", len(dirs))

	err = runner.watchLoop()
	logger.Info("正在退出...")
	return err
}

func newDevRunner(ctx context.Context, registry *plugin.Registry, watcher *fsnotify.Watcher, logger *log.Logger, opts *DevOptions) *devRunner {
	return &devRunner{
		opts:     opts,
		registry: registry,
		watcher:  watcher,
		scanner: plugin.NewScanner(
			plugin.WithAnnotationFilter(registry.Annotations()...),
			plugin.WithScannerLogger(logger),
		),
		logger:      logger,
		ctx:         ctx,
		pendingDirs: make(map[string]*time.Timer),
	}
}

// stop 停止所有待处理的定时器
func (r *devRunner) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for dir, timer := range r.pendingDirs {
		timer.Stop()
		delete(r.pendingDirs, dir)
	}
}

// watchLoop 事件处理循环
func (r *devRunner) watchLoop() error {
	for {
		select {
		case <-r.ctx.Done():
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("监听错误", "err", err)
		}
	}
}

// handleEvent 处理文件事件
func (r *devRunner) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	filePath := event.Name
	if !strings.HasSuffix(filePath, ".go") || isGeneratedFile(filePath) {
		return
	}

	r.logger.Debug("检测到文件变化", "file", filePath)

	matched, err := r.scanner.QuickMatchFile(filePath)
	if err != nil {
		r.logger.Debug("检查注解失败", "file", filePath, "err", err)
		return
	}
	if !matched {
		r.logger.Debug("跳过文件（无注解）", "file", filePath)
		return
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	// 编辑过程中的半成品文件不触发生成
	if err := utils.CheckSyntax(filePath, content); err != nil {
		r.logger.Warn("语法错误，跳过生成", "file", filePath, "err", err)
		return
	}

	r.scheduleGenerate(filepath.Dir(filePath))
}

// scheduleGenerate 按包目录防抖动调度生成
func (r *devRunner) scheduleGenerate(pkgDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, exists := r.pendingDirs[pkgDir]; exists {
		timer.Stop()
	}

	r.pendingDirs[pkgDir] = time.AfterFunc(r.opts.Debounce, func() {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		r.runGenerate(pkgDir)

		r.mu.Lock()
		delete(r.pendingDirs, pkgDir)
		r.mu.Unlock()
	})
}

// runGenerate 只为变动的包执行生成
func (r *devRunner) runGenerate(pkgDir string) {
	r.logger.Debug("触发代码生成", "dir", pkgDir)

	stats, err := plugin.RunWithOptionsAndStats(r.ctx, &plugin.RunOptions{
		Registry: r.registry,
		Patterns: []string{pkgDir},
		Verbose:  r.opts.Verbose,
		Output:   r.opts.Output,
		Async:    r.opts.Async,
		Logger:   r.logger,
	})
	if r.onGenerate != nil {
		r.onGenerate(pkgDir, stats, err)
	}
	if err != nil {
		r.logger.Error("生成失败", "dir", pkgDir, "err", err)
		return
	}

	if stats.FileCount > 0 {
		r.logger.Info("生成完成", "dir", pkgDir, "files", stats.FileCount, "elapsed", stats.TotalDuration)
	} else {
		r.logger.Debug("生成完成: 无文件变化", "dir", pkgDir)
	}
}

// collectWatchDirs 收集所有需要监听的目录
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		baseDir := strings.TrimSuffix(pattern, "/...")

		absDir, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			continue
		}

		if !recursive {
			add(absDir)
			continue
		}

		err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			// 跳过隐藏目录、vendor 和 testdata
			name := d.Name()
			if path != absDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}

// isGeneratedFile 测试文件与带生成头的文件不触发生成
func isGeneratedFile(filePath string) bool {
	if strings.HasSuffix(filePath, "_test.go") {
		return true
	}
	file, err := parser.ParseFile(token.NewFileSet(), filePath, nil, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		return false
	}
	return ast.IsGenerated(file)
}
