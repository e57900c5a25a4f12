package plugin

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// OutputParam 所有生成器通用的输出路径参数
const OutputParam = "output"

// ParseParamsFromStruct 从结构体的 tag 解析参数定义
// 支持的 tag: name, required, default, description
//
// 示例:
//
//	type Params struct {
//	    Constructor string `param:"name=constructor,required=false,default=Builder,description=构造方法名"`
//	    Prefix      string `param:"name=prefix,required=false,default=,description=setter 方法名前缀"`
//	}
//
//	params := plugin.ParseParamsFromStruct(Params{})
func ParseParamsFromStruct(v any) []ParamDef {
	typ := reflect.TypeOf(v)
	if typ == nil {
		return nil
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var params []ParamDef
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("param")
		if tag == "" {
			continue
		}
		if def := parseParamTag(tag); def.Name != "" {
			params = append(params, def)
		}
	}
	return params
}

// parseParamTag 解析 param tag 字符串
// 格式: name=xxx,required=true,default=xxx,description=xxx
func parseParamTag(tag string) ParamDef {
	var param ParamDef
	for key, value := range splitTag(tag) {
		switch key {
		case "name":
			param.Name = value
		case "required":
			param.Required = cast.ToBool(value)
		case "default":
			param.Default = value
		case "description":
			param.Description = value
		}
	}
	return param
}

// splitTag 分割 tag 字符串为键值对，反斜杠可转义逗号和等号
// 格式: key1=value1,key2=value2,...
func splitTag(tag string) map[string]string {
	result := make(map[string]string)

	var key, value strings.Builder
	inKey := true
	escaped := false

	flush := func() {
		if key.Len() > 0 {
			result[key.String()] = value.String()
		}
		key.Reset()
		value.Reset()
		inKey = true
	}

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
			continue
		case ch == '=' && inKey:
			inKey = false
			continue
		case ch == ',':
			flush()
			continue
		}

		if inKey {
			key.WriteByte(ch)
		} else {
			value.WriteByte(ch)
		}
	}
	flush()

	return result
}

// ParseAnnotationParams 将注解的参数解析到目标结构体中
// annotation: 注解对象，包含参数键值对
// target: 目标结构体（必须是指针）
// paramDefs: 参数定义列表，用于校验参数名、必填项以及应用默认值
//
// 示例:
//
//	var params BuilderParams
//	err := plugin.ParseAnnotationParams(annotation, &params, paramDefs)
func ParseAnnotationParams(annotation *Annotation, target any, paramDefs []ParamDef) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("参数目标必须是非 nil 指针, 得到: %T", target)
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("参数目标必须指向结构体, 得到: %T", target)
	}

	// 未知参数多半是拼写错误，直接报错
	known := lo.Map(paramDefs, func(def ParamDef, _ int) string { return strings.ToLower(def.Name) })
	known = append(known, OutputParam)
	for key := range annotation.Params {
		if !slices.Contains(known, key) {
			return fmt.Errorf("@%s 不支持参数 %q，可用参数: %s", annotation.Name, key, strings.Join(known, ", "))
		}
	}

	defMap := lo.KeyBy(paramDefs, func(def ParamDef) string { return def.Name })

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		fieldVal := val.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		tag := typ.Field(i).Tag.Get("param")
		if tag == "" {
			continue
		}
		paramName := parseParamTag(tag).Name
		if paramName == "" {
			continue
		}

		paramValue, ok := annotation.Params[strings.ToLower(paramName)]
		if !ok {
			def := defMap[paramName]
			if def.Required {
				return fmt.Errorf("@%s 缺少必填参数 %s", annotation.Name, paramName)
			}
			paramValue = def.Default
		}

		if err := setFieldValue(fieldVal, paramValue); err != nil {
			return fmt.Errorf("参数 %s=%q 无效: %w", paramName, paramValue, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值，支持 string, int, uint, bool, float 等基本类型
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := cast.ToInt64E(lo.Ternary(value == "", "0", value))
		if err != nil {
			return err
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := cast.ToUint64E(lo.Ternary(value == "", "0", value))
		if err != nil {
			return err
		}
		field.SetUint(v)
	case reflect.Bool:
		v, err := cast.ToBoolE(lo.Ternary(value == "", "false", value))
		if err != nil {
			return err
		}
		field.SetBool(v)
	case reflect.Float32, reflect.Float64:
		v, err := cast.ToFloat64E(lo.Ternary(value == "", "0", value))
		if err != nil {
			return err
		}
		field.SetFloat(v)
	default:
		return fmt.Errorf("不支持的参数类型 %s", field.Kind())
	}
	return nil
}
