package buildergen

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/donutnomad/gobuilder/internal/structparse"
	"github.com/donutnomad/gobuilder/internal/typeexpr"
	"github.com/donutnomad/gobuilder/internal/utils"
)

// Field 记录的一个具名字段
type Field struct {
	Name  string
	Type  typeexpr.Expr // 声明类型
	Class Classification
}

// Optional 是否为可选字段
func (f Field) Optional() bool {
	return f.Class.Kind == Optional
}

// Record 标注了 @Builder 的结构体
type Record struct {
	Name        string
	PackageName string
	FilePath    string
	Fields      []Field

	info *structparse.TypeInfo
}

// LoadRecord 解析文件中的结构体声明并对字段分类
// 非结构体、泛型结构体、带嵌入字段的结构体都会返回错误
func LoadRecord(ctx *structparse.ParseContext, filePath, name string) (*Record, error) {
	info, err := ctx.ParseType(filePath, name)
	if err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", name, err)
	}
	return NewRecord(info)
}

// NewRecord 从类型信息构造记录
func NewRecord(info *structparse.TypeInfo) (*Record, error) {
	if info.Kind != structparse.KindStruct {
		return nil, fmt.Errorf("%s 是 %s，@Builder 只能用于结构体", info.Name, info.Kind)
	}
	if len(info.TypeParams) > 0 {
		return nil, fmt.Errorf("%s 带有类型参数 [%s]，@Builder 不支持泛型结构体",
			info.Name, strings.Join(info.TypeParams, ", "))
	}

	rec := &Record{
		Name:        info.Name,
		PackageName: info.PackageName,
		FilePath:    info.FilePath,
		info:        info,
	}

	var errs error
	for _, f := range info.Fields {
		if f.Embedded {
			errs = multierr.Append(errs, fmt.Errorf("%s 的嵌入字段 %s 不受支持，请改为具名字段", info.Name, f.Type))
			continue
		}
		// 空白字段无法在复合字面量中赋值
		if f.Name == "_" {
			continue
		}
		t := typeexpr.FromAST(f.Expr)
		rec.Fields = append(rec.Fields, Field{Name: f.Name, Type: t, Class: Classify(t)})
	}
	if errs != nil {
		return nil, errs
	}
	return rec, nil
}

// BuilderName 构建器类型名
func (r *Record) BuilderName() string {
	return r.Name + "Builder"
}

// SetterName setter 方法名，没有前缀时与字段同名
func (r *Record) SetterName(f Field, prefix string) string {
	if prefix == "" {
		return f.Name
	}
	return prefix + utils.UpperFirst(f.Name)
}

// slotName 构建器中保存字段值的槽位名
// 与 setter 同名（未导出字段）或为关键字时追加 Val
func slotName(field, setter string) string {
	name := utils.SafeIdent(utils.LowerCamel(field))
	if name == setter {
		name += "Val"
	}
	return name
}

// Qualifiers 字段类型引用的包限定名，按字段顺序去重
func (r *Record) Qualifiers() []string {
	var names []string
	for _, f := range r.Fields {
		names = append(names, typeexpr.Qualifiers(f.Type)...)
	}
	return lo.Uniq(names)
}

// Validate 检查生成的方法名是否合法且互不冲突
func (r *Record) Validate(opts SynthOptions) error {
	opts = opts.withDefaults()

	var errs error
	fail := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%s: %s", r.Name, fmt.Sprintf(format, args...)))
	}

	if !token.IsIdentifier(opts.Constructor) {
		fail("构造方法名 %q 不是合法标识符", opts.Constructor)
	}
	if r.info != nil && r.info.HasMethod(opts.Constructor) {
		fail("已声明方法 %s，与构造方法冲突，可通过 constructor 参数改名", opts.Constructor)
	}

	setters := make(map[string]string)
	slots := make(map[string]string)
	for _, f := range r.Fields {
		if f.Name == opts.Constructor {
			fail("字段 %s 与构造方法同名，可通过 constructor 参数改名", f.Name)
		}

		setter := r.SetterName(f, opts.Prefix)
		switch {
		case !token.IsIdentifier(setter):
			fail("字段 %s 的 setter 名 %q 不是合法标识符", f.Name, setter)
		case setter == buildMethod:
			fail("字段 %s 的 setter 与 %s 方法同名", f.Name, buildMethod)
		}
		if other, ok := setters[setter]; ok {
			fail("字段 %s 与 %s 的 setter 同名: %s", other, f.Name, setter)
		}
		setters[setter] = f.Name

		slot := slotName(f.Name, setter)
		if other, ok := slots[slot]; ok {
			fail("字段 %s 与 %s 的槽位同名: %s", other, f.Name, slot)
		}
		slots[slot] = f.Name
	}

	return errs
}
