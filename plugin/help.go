package plugin

import (
	"fmt"
	"strings"
)

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder

	for _, gen := range generators {
		annotations := gen.Annotations()
		if len(annotations) == 0 {
			continue
		}

		mainAnnotation := annotations[0]
		paramDefs := gen.ParamDefs()

		fmt.Fprintf(&sb, "  @%s - %s\n", mainAnnotation, gen.Name())
		sb.WriteString("    参数:\n")
		sb.WriteString("      output - 输出文件路径（支持 $FILE $PACKAGE $STRUCT 与 sprig 模板）\n")

		for _, param := range paramDefs {
			required := ""
			if param.Required {
				required = " (必填)"
			}
			defaultVal := ""
			if param.Default != "" {
				defaultVal = fmt.Sprintf(" [默认: %s]", param.Default)
			}
			fmt.Fprintf(&sb, "      %s%s%s - %s\n", param.Name, required, defaultVal, param.Description)
		}

		sb.WriteString("    示例:\n")
		fmt.Fprintf(&sb, "      @%s\n", mainAnnotation)
		fmt.Fprintf(&sb, "      @%s(output=$FILE_gen.go)\n", mainAnnotation)
		fmt.Fprintf(&sb, "      @%s(output=`{{ .Struct | snakecase }}_gen.go`)\n", mainAnnotation)

		// 只显示前 2 个有默认值的参数示例
		shown := 0
		for _, param := range paramDefs {
			if shown >= 2 {
				break
			}
			if param.Default != "" {
				fmt.Fprintf(&sb, "      @%s(%s=%s)\n", mainAnnotation, param.Name, param.Default)
				shown++
			}
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatParamDef 格式化单个参数定义
func FormatParamDef(param ParamDef) string {
	parts := []string{param.Name}

	if param.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "optional")
	}
	if param.Default != "" {
		parts = append(parts, fmt.Sprintf("default=%s", param.Default))
	}
	if param.Description != "" {
		parts = append(parts, param.Description)
	}

	return strings.Join(parts, ", ")
}
