// Package structparse 对单个类型声明做静态分析。
//
// 与完整的类型检查不同，本包只依赖语法树，因此可以在生成代码之前、
// 甚至在包无法编译时运行。它回答生成器关心的几个问题：
//
//  1. 类型声明的形态 - 结构体、接口、别名还是其他命名类型
//  2. 类型参数 - 泛型声明的参数列表
//  3. 字段 - 名称、类型表达式、标签，以及是否为嵌入字段
//  4. 方法 - 扫描同目录下的所有文件，收集该类型已声明的方法
//  5. 导入 - 文件的导入列表，别名与真实包名（通过 pkgresolver 解析）
//
// # 基本用法
//
//	info, err := structparse.ParseType("path/to/file.go", "Person")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if info.Kind != structparse.KindStruct {
//	    ...
//	}
//	for _, field := range info.Fields {
//	    fmt.Printf("  字段: %s %s\n", field.Name, field.Type)
//	}
//
// # 依赖注入与测试
//
// 需要自定义包名解析时使用 ParseContext：
//
//	ctx := structparse.NewParseContextWithResolver(myResolver)
//	info, err := ctx.ParseType(filename, typeName)
//
// 嵌入字段不做展开，只通过 FieldInfo.Embedded 标记，由调用方决定如何处理。
package structparse
