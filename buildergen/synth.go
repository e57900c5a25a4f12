package buildergen

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/donutnomad/gg"

	"github.com/donutnomad/gobuilder/internal/structparse"
	"github.com/donutnomad/gobuilder/internal/typeexpr"
)

const (
	moPath       = "github.com/samber/mo"
	buildkitPath = "github.com/donutnomad/gobuilder/buildkit"

	// DefaultConstructor 默认的构造方法名
	DefaultConstructor = "Builder"

	buildMethod = "Build"
)

// SynthOptions 生成选项
type SynthOptions struct {
	Constructor string // 构造方法名，为空时使用 Builder
	Prefix      string // setter 前缀，默认没有前缀
}

func (o SynthOptions) withDefaults() SynthOptions {
	if o.Constructor == "" {
		o.Constructor = DefaultConstructor
	}
	return o
}

// slot 构建器中的一个字段槽位
type slot struct {
	field  Field
	name   string // 槽位名
	setter string // setter 方法名
	value  string // 槽位保存的值类型，已改写为生成文件中的包限定名
}

// File 一个生成文件，文件内所有构建器共享同一张导入表
type File struct {
	gen     *gg.Generator
	paths   map[string]*gg.PackageRef // 导入路径 -> 包引用
	aliases map[string]string         // 已使用的限定名 -> 导入路径

	moPkg  *gg.PackageRef
	kitPkg *gg.PackageRef
}

// NewFile 创建属于 pkgName 包的生成文件
// mo 与 buildkit 最先登记，源文件中同名的其他包会改用新的限定名
func NewFile(pkgName string) *File {
	f := &File{
		gen:     gg.New(),
		paths:   make(map[string]*gg.PackageRef),
		aliases: make(map[string]string),
	}
	f.gen.SetPackage(pkgName)
	f.moPkg = f.use(moPath, "mo")
	f.kitPkg = f.use(buildkitPath, "buildkit")
	return f
}

// Generator 返回文件的 gg 定义
func (f *File) Generator() *gg.Generator {
	return f.gen
}

// use 以 name 为首选限定名导入 importPath，name 已被其他包占用时依次尝试 name2、name3...
func (f *File) use(importPath, name string) *gg.PackageRef {
	if ref, ok := f.paths[importPath]; ok {
		return ref
	}

	alias := name
	for n := 2; ; n++ {
		if _, taken := f.aliases[alias]; !taken {
			break
		}
		alias = name + strconv.Itoa(n)
	}

	var ref *gg.PackageRef
	if alias == path.Base(importPath) {
		ref = f.gen.P(importPath)
	} else {
		ref = f.gen.PAlias(importPath, alias)
	}
	f.paths[importPath] = ref
	f.aliases[ref.Alias()] = importPath
	return ref
}

type synthesizer struct {
	file  *File
	gen   *gg.Generator
	rec   *Record
	opts  SynthOptions
	recv  string
	slots []slot
}

// Synthesize 把记录的构建器定义追加到 file：
// 构建器类型、记录上的构造方法、每个字段的 setter 以及 Build
func Synthesize(file *File, rec *Record, opts SynthOptions) error {
	opts = opts.withDefaults()
	if err := rec.Validate(opts); err != nil {
		return err
	}

	s := &synthesizer{
		file: file,
		gen:  file.gen,
		rec:  rec,
		opts: opts,
		recv: receiverName(rec.Name),
	}
	s.layout()

	s.builderType()
	s.constructor()
	s.setters()
	s.finalizer()
	return nil
}

// receiverName 构建器方法的接收器名，避免遮蔽记录类型
func receiverName(recordName string) string {
	if recordName == "b" {
		return "builder"
	}
	return "b"
}

// layout 计算槽位，并为字段类型登记导入
func (s *synthesizer) layout() {
	imp := newImporter(s.file, s.rec.info)
	for _, q := range s.rec.Qualifiers() {
		imp.qualifier(q)
	}

	for _, f := range s.rec.Fields {
		setter := s.rec.SetterName(f, s.opts.Prefix)
		value := typeexpr.Qualify(f.Class.Type, imp.qualifier, imp.dotName)
		s.slots = append(s.slots, slot{
			field:  f,
			name:   slotName(f.Name, setter),
			setter: setter,
			value:  value.String(),
		})
	}
}

// option 渲染 mo.Option[T]，T 保持原样，避免被加上包前缀
func (s *synthesizer) option(t string) *gg.Group {
	return gg.NewInlineGroup().Append(s.file.moPkg.Type("Option"), gg.S("[%s]", t))
}

func (s *synthesizer) builderType() {
	body := s.gen.Body()
	body.Append(gg.LineComment("%s 逐字段构建 %s", s.rec.BuilderName(), s.rec.Name))

	st := body.NewStruct(s.rec.BuilderName())
	for _, sl := range s.slots {
		st.AddField(sl.name, s.option(sl.value))
	}
}

func (s *synthesizer) constructor() {
	body := s.gen.Body()
	body.AddLine()
	body.Append(gg.LineComment("%s 返回所有字段都未设置的 %s", s.opts.Constructor, s.rec.BuilderName()))
	body.NewFunction(s.opts.Constructor).
		WithReceiver("", s.rec.Name).
		AddResult("", "*"+s.rec.BuilderName()).
		AddBody(gg.Return(gg.S("&%s{}", s.rec.BuilderName())))
}

func (s *synthesizer) setters() {
	body := s.gen.Body()
	for _, sl := range s.slots {
		body.AddLine()
		if sl.field.Optional() {
			body.Append(gg.LineComment("%s 设置可选字段 %s", sl.setter, sl.field.Name))
		} else {
			body.Append(gg.LineComment("%s 设置 %s", sl.setter, sl.field.Name))
		}
		body.NewFunction(sl.setter).
			WithReceiver(s.recv, "*"+s.rec.BuilderName()).
			AddParameter("v", sl.value).
			AddResult("", "*"+s.rec.BuilderName()).
			AddBody(
				gg.NewInlineGroup().Append(
					gg.S("%s.%s = ", s.recv, sl.name),
					s.file.moPkg.Call("Some", "v"),
				),
				gg.Return(gg.S("%s", s.recv)),
			)
	}
}

func (s *synthesizer) finalizer() {
	missing := s.file.kitPkg.Dot("ErrMissingField")

	var stmts []any
	for _, sl := range s.slots {
		if sl.field.Optional() {
			continue
		}
		stmts = append(stmts,
			gg.If(gg.S("%s.%s.IsAbsent()", s.recv, sl.name)).
				AddBody(gg.S("return %s{}, %s", s.rec.Name, missing)),
		)
	}
	stmts = append(stmts, gg.S("return %s, nil", s.literal()))

	body := s.gen.Body()
	body.AddLine()
	body.Append(gg.LineComment("%s 构建 %s，必填字段未设置时返回 %s", buildMethod, s.rec.Name, missing))
	body.Append(gg.LineComment("不会修改构建器，可以重复调用"))
	body.NewFunction(buildMethod).
		WithReceiver(s.recv, "*"+s.rec.BuilderName()).
		AddResult("", s.rec.Name).
		AddResult("", "error").
		AddBody(stmts...)
}

// literal 由槽位组装记录：必填字段取出值，可选字段原样复制
func (s *synthesizer) literal() string {
	if len(s.slots) == 0 {
		return s.rec.Name + "{}"
	}

	var sb strings.Builder
	sb.WriteString(s.rec.Name + "{\n")
	for _, sl := range s.slots {
		if sl.field.Optional() {
			fmt.Fprintf(&sb, "%s: %s.%s,\n", sl.field.Name, s.recv, sl.name)
		} else {
			fmt.Fprintf(&sb, "%s: %s.%s.MustGet(),\n", sl.field.Name, s.recv, sl.name)
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// importer 把源文件中的包限定名映射到生成文件中的导入
type importer struct {
	file  *File
	info  *structparse.TypeInfo
	names map[string]string // 源文件中的限定名 -> 生成文件中的限定名
}

func newImporter(file *File, info *structparse.TypeInfo) *importer {
	return &importer{file: file, info: info, names: make(map[string]string)}
}

// qualifier 登记源文件中以 name 引用的包，返回生成文件中的限定名
// 找不到对应导入时原样返回
func (im *importer) qualifier(name string) string {
	if alias, ok := im.names[name]; ok {
		return alias
	}
	alias := name
	if im.info != nil {
		if imp, ok := im.info.Import(name); ok && !imp.Dot() {
			alias = im.file.use(imp.ImportPath, name).Alias()
		}
	}
	im.names[name] = alias
	return alias
}

// dotName 点导入引入的名字改写为显式的包限定
func (im *importer) dotName(name string) (string, bool) {
	if im.info == nil {
		return "", false
	}
	imp, ok := im.info.DotProvider(name)
	if !ok {
		return "", false
	}
	return im.file.use(imp.ImportPath, imp.PackageName).Alias(), true
}
