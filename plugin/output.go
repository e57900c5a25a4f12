package plugin

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/donutnomad/gobuilder/internal/utils"
)

// OutputVars 输出路径模板可用的变量
//
//	$FILE / {{ .File }}       源文件名（不含 .go 后缀）
//	$PACKAGE / {{ .Package }} 包名
//	$STRUCT / {{ .Struct }}   类型名的蛇形形式；模板中 .Struct 为原始类型名
type OutputVars struct {
	File    string
	Package string
	Struct  string
}

func outputVars(target *Target) OutputVars {
	return OutputVars{
		File:    strings.TrimSuffix(filepath.Base(target.FilePath), ".go"),
		Package: target.PackageName,
		Struct:  target.Name,
	}
}

// GetOutputPath 根据注解参数和默认规则计算输出路径
// 优先级：注解参数 > 包级插件配置 > 包级默认配置 > 命令行参数 > 默认文件名
// 相对路径相对于源文件所在目录
func GetOutputPath(target *Target, ann *Annotation, defaultFileName string, pkgConfig *PackageConfig, pluginName string, cmdOutput string) (string, error) {
	var output string
	if ann != nil {
		output = ann.GetParam(OutputParam)
	}
	if output == "" && pkgConfig != nil {
		output = pkgConfig.GetPluginOutput(strings.ToLower(pluginName))
	}
	if output == "" {
		output = cmdOutput
	}
	if output == "" {
		output = defaultFileName
	}
	if output == "" {
		output = "generate.go"
	}

	output, err := expandOutput(output, outputVars(target))
	if err != nil {
		return "", fmt.Errorf("%s: 输出路径 %q 无效: %w", target.Name, output, err)
	}

	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}
	if filepath.IsAbs(output) {
		return filepath.Clean(output), nil
	}
	return filepath.Join(filepath.Dir(target.FilePath), output), nil
}

// expandOutput 展开 $ 变量和 Go 模板（带 sprig 函数），例如：
//
//	$FILE_builder                        -> person_builder
//	{{ .Struct | snakecase }}_builder    -> http_client_builder
//	{{ .Package }}/{{ .Struct | lower }} -> models/person
func expandOutput(output string, vars OutputVars) (string, error) {
	output = strings.NewReplacer(
		"$FILE", vars.File,
		"$PACKAGE", vars.Package,
		"$STRUCT", utils.ToSnakeCase(vars.Struct),
	).Replace(output)

	if !strings.Contains(output, "{{") {
		return output, nil
	}

	tmpl, err := template.New("output").
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(output)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
