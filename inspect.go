package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"

	"github.com/donutnomad/gobuilder/buildergen"
	"github.com/donutnomad/gobuilder/internal/structparse"
	"github.com/donutnomad/gobuilder/plugin"
)

// runInspect 列出 @Builder 结构体及其字段分类
func runInspect(logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "以 JSON 格式输出")
	if err := fs.Parse(args); err != nil {
		return err
	}

	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	views, err := inspect(context.Background(), logger, patterns)
	if err != nil {
		return err
	}

	if *asJSON {
		err = writeJSON(os.Stdout, views)
	} else {
		err = writeTable(os.Stdout, views)
	}
	if err != nil {
		return err
	}

	if failed := countFailed(views); failed > 0 {
		return fmt.Errorf("%d 个结构体无法生成 Builder", failed)
	}
	return nil
}

// inspect 扫描并描述所有 @Builder 目标，按文件和名称排序
func inspect(ctx context.Context, logger *log.Logger, patterns []string) ([]buildergen.RecordView, error) {
	gen := buildergen.NewBuilderGenerator()
	annotation := gen.Annotations()[0]

	scanner := plugin.NewScanner(
		plugin.WithAnnotationFilter(annotation),
		plugin.WithScannerLogger(logger),
	)
	result, err := scanner.Scan(ctx, patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}

	parseCtx := structparse.NewParseContext()
	views := make([]buildergen.RecordView, 0, len(result.Structs)+len(result.Types))

	for _, at := range result.Types {
		views = append(views, buildergen.RecordView{
			Name:    at.Target.Name,
			Package: at.Target.PackageName,
			File:    at.Target.FilePath,
			Error:   fmt.Sprintf("@%s 只能用于结构体，%s 是 %s", annotation, at.Target.Name, at.Target.Shape()),
		})
	}

	for _, at := range result.Structs {
		view := buildergen.RecordView{
			Name:    at.Target.Name,
			Package: at.Target.PackageName,
			File:    at.Target.FilePath,
		}

		var params buildergen.BuilderParams
		if err := plugin.ParseAnnotationParams(plugin.GetAnnotation(at.Annotations, annotation), &params, gen.ParamDefs()); err != nil {
			view.Error = err.Error()
			views = append(views, view)
			continue
		}

		record, err := buildergen.LoadRecord(parseCtx, at.Target.FilePath, at.Target.Name)
		if err != nil {
			view.Error = err.Error()
			views = append(views, view)
			continue
		}

		logger.Debug("检查结构体", "name", record.Name, "fields", len(record.Fields))
		views = append(views, buildergen.Describe(record, buildergen.SynthOptions{
			Constructor: params.Constructor,
			Prefix:      params.Prefix,
		}))
	}

	slices.SortFunc(views, func(a, b buildergen.RecordView) int {
		if c := strings.Compare(a.File, b.File); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return views, nil
}

func countFailed(views []buildergen.RecordView) int {
	n := 0
	for _, v := range views {
		if v.Error != "" {
			n++
		}
	}
	return n
}

func writeJSON(w io.Writer, views []buildergen.RecordView) error {
	data, err := sonic.ConfigStd.MarshalIndent(views, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// writeTable 以对齐的表格输出，每个结构体一段
func writeTable(w io.Writer, views []buildergen.RecordView) error {
	var sb strings.Builder
	for i, v := range views {
		if i > 0 {
			sb.WriteString("\n")
		}
		if v.Error != "" {
			fmt.Fprintf(&sb, "%s.%s (%s)\n  错误: %s\n", v.Package, v.Name, v.File, v.Error)
			continue
		}

		fmt.Fprintf(&sb, "%s.%s -> %s (%s.%s())\n", v.Package, v.Name, v.Builder, v.Name, v.Constructor)
		if len(v.Fields) == 0 {
			sb.WriteString("  (无字段)\n")
			continue
		}

		rows := [][]string{{"字段", "分类", "声明类型", "setter"}}
		for _, f := range v.Fields {
			rows = append(rows, []string{f.Name, f.Kind, f.Declared, fmt.Sprintf("%s(%s)", f.Setter, f.Param)})
		}
		writeRows(&sb, rows)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeRows 按显示宽度对齐各列，最后一列不填充
func writeRows(sb *strings.Builder, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for _, row := range rows {
		sb.WriteString("  ")
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}
}
