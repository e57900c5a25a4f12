package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/donutnomad/gobuilder/buildergen"
	"github.com/donutnomad/gobuilder/plugin"
)

func init() {
	plugin.MustRegister(buildergen.NewBuilderGenerator())
}

var (
	verbose  = flag.Bool("v", false, "详细输出")
	help     = flag.Bool("h", false, "显示帮助信息")
	output   = flag.String("output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE, $STRUCT），为空时使用 $FILE_builder.go")
	noOutput = flag.Bool("no-output", false, "忽略 -output，使用注解或包级配置中的输出路径")
	async    = flag.Bool("async", true, "异步执行生成器")
	dryRun   = flag.Bool("dry-run", false, "只输出 diff，不写入文件")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	logger := newLogger(*verbose)
	log.SetDefault(logger)

	args := flag.Args()
	if len(args) == 0 {
		exitOnError(runGen(logger, nil))
		return
	}

	switch args[0] {
	case "gen":
		exitOnError(runGen(logger, args[1:]))
	case "dev":
		exitOnError(runDev(logger, args[1:]))
	case "inspect":
		exitOnError(runInspect(logger, args[1:]))
	default:
		// 不是子命令，当作路径参数处理
		exitOnError(runGen(logger, args))
	}
}

// newLogger 创建命令行使用的日志器，-v 时输出调试信息
func newLogger(verbose bool) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "gobuilder",
		ReportTimestamp: verbose,
		TimeFormat:      "15:04:05",
		Level:           lo.Ternary(verbose, log.DebugLevel, log.InfoLevel),
	})
}

func exitOnError(err error) {
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

// outputPath -no-output 时返回空字符串
func outputPath() string {
	if *noOutput {
		return ""
	}
	return *output
}

func runGen(logger *log.Logger, patterns []string) error {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		return fmt.Errorf("没有已注册的生成器")
	}

	for _, gen := range registry.Generators() {
		anns := lo.Map(gen.Annotations(), func(item string, _ int) string { return "@" + item })
		logger.Debug("已注册生成器", "name", gen.Name(), "annotations", strings.Join(anns, ","))
	}

	stats, err := plugin.RunWithOptionsAndStats(context.Background(), &plugin.RunOptions{
		Registry: registry,
		Patterns: patterns,
		Verbose:  *verbose,
		Output:   outputPath(),
		Async:    *async,
		DryRun:   *dryRun,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if stats.FileCount > 0 || *verbose {
		logger.Info("生成完成",
			"targets", stats.TargetCount,
			"files", stats.FileCount,
			"unchanged", stats.UnchangedCount,
			"elapsed", stats.TotalDuration,
		)
		logger.Debug("耗时", "scan", stats.ScanDuration, "generate", stats.GenerateDuration)
	}
	return nil
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `gobuilder - 为 Go 结构体生成 Builder

用法:
  gobuilder [选项] [路径...]
  gobuilder gen [选项] [路径...]
  gobuilder dev [选项] [路径...]
  gobuilder inspect [-json] [路径...]

命令:
  gen       执行代码生成（默认）
  dev       启动开发模式，监听文件变动自动生成
  inspect   列出 @Builder 结构体及字段分类，不生成代码

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./models/...   递归扫描 models 目录
    ./models       只扫描 models 目录

选项:
`)
	flag.PrintDefaults()

	registry := plugin.Global()
	if len(registry.Generators()) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "\n支持的注解:\n")
		_, _ = fmt.Fprint(os.Stderr, plugin.FormatHelpText(registry))
	}

	_, _ = fmt.Fprintf(os.Stderr, `模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名
  $STRUCT   - 结构体名的蛇形形式
  {{ ... }} - Go 模板，可使用 sprig 函数，如 {{ .Struct | snakecase }}

包级配置:
  //go:gobuilder: -output `+"`builders`"+`
  //go:gobuilder: plugin:builder -output `+"`$FILE_b`"+`

示例:
  gobuilder                                 扫描当前目录（默认 ./...）
  gobuilder -v ./models/...                 详细模式扫描 models 目录
  gobuilder -output $FILE_gen ./...         指定输出文件名
  gobuilder -dry-run ./...                  只查看将要产生的变化
  gobuilder dev ./...                       开发模式，监听文件变动
  gobuilder inspect -json ./models          以 JSON 输出字段分类
`)
}
