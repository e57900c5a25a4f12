// Package buildkit 是生成的 Builder 代码在运行时依赖的公共部分。
//
// 所有记录类型共享同一个错误值，调用方可以用 errors.Is 统一判断：
//
//	cmd, err := Command{}.Builder().Executable("cargo").Build()
//	if errors.Is(err, buildkit.ErrMissingField) {
//	    // 补齐必填字段后可以再次调用 Build
//	}
package buildkit

import "errors"

// ErrMissingField 必填字段未设置时 Build 返回的错误
// 错误信息固定为 "missing field"，不包含字段名
var ErrMissingField = errors.New("missing field")
