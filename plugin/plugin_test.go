package plugin

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/donutnomad/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{})
}

func TestParseAnnotations(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"simple annotation", "// @Builder", 1},
		{"annotation with params", "// @Builder(constructor=`New`, prefix=`With`)", 1},
		{"multiple annotations", "// @Builder @Other", 2},
		{"multiline annotations", "// @Builder(prefix=`With`)\n// @Other(to=`UserDTO`)", 2},
		{"no annotation", "// This is a comment", 0},
		{"inline email is not annotation", "// 联系 admin@example.com", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ParseAnnotations(tt.input), tt.expected)
		})
	}
}

func TestAnnotationParams(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "反引号格式",
			input: "// @Builder(constructor=`New`, output=`$FILE_gen.go`)",
			want:  map[string]string{"constructor": "New", "output": "$FILE_gen.go"},
		},
		{
			name:  "普通格式无空格",
			input: "// @Builder(constructor=New,prefix=With)",
			want:  map[string]string{"constructor": "New", "prefix": "With"},
		},
		{
			name:  "混合格式",
			input: `// @Builder(constructor="New", prefix=With)`,
			want:  map[string]string{"constructor": "New", "prefix": "With"},
		},
		{
			name:  "模板中的空格",
			input: "// @Builder(output=`{{ .Struct | snakecase }}.go`)",
			want:  map[string]string{"output": "{{ .Struct | snakecase }}.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anns := ParseAnnotations(tt.input)
			require.Len(t, anns, 1)
			assert.Equal(t, "Builder", anns[0].Name)
			assert.Equal(t, tt.want, anns[0].Params)
			for k := range tt.want {
				assert.True(t, anns[0].HasParam(strings.ToUpper(k)))
			}
		})
	}
}

func TestFilterAndGetAnnotation(t *testing.T) {
	anns := ParseAnnotations("// @Builder\n// @Other(x=1)")
	assert.Len(t, FilterByNames(anns, "Other"), 1)
	assert.Len(t, FilterByNames(anns), 2)
	assert.True(t, HasAnnotation(anns, "Builder"))
	assert.False(t, HasAnnotation(anns, "Missing"))
	assert.Equal(t, "1", GetAnnotation(anns, "Other").GetParam("x"))
	assert.Nil(t, GetAnnotation(anns, "Missing"))
}

// testGenerator 测试用生成器
type testGenerator struct {
	BaseGenerator
}

func (g *testGenerator) Generate(ctx *GenerateContext) (*GenerateResult, error) {
	return NewGenerateResult(), nil
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	gen1 := &testGenerator{BaseGenerator: *NewBaseGenerator("gen1", []string{"Builder"}, []TargetKind{TargetStruct})}
	gen2 := &testGenerator{BaseGenerator: *NewBaseGenerator("gen2", []string{"Other"}, []TargetKind{TargetStruct, TargetType})}

	require.NoError(t, registry.Register(gen1))
	require.NoError(t, registry.Register(gen2))

	assert.True(t, registry.IsRegistered("Builder"))
	assert.True(t, registry.IsRegistered("Other"))
	assert.Equal(t, []string{"Builder", "Other"}, registry.Annotations())

	// 注解重复绑定
	gen3 := &testGenerator{BaseGenerator: *NewBaseGenerator("gen3", []string{"Builder"}, []TargetKind{TargetStruct})}
	assert.Error(t, registry.Register(gen3))
	// 生成器重名
	assert.Error(t, registry.Register(gen1))
	assert.Panics(t, func() { registry.MustRegister(gen1) })

	gen, ok := registry.GetByAnnotation("Builder")
	require.True(t, ok)
	assert.Equal(t, "gen1", gen.Name())

	require.NoError(t, registry.Unregister("gen2"))
	assert.False(t, registry.IsRegistered("Other"))
	assert.Error(t, registry.Unregister("gen2"))
}

func TestDispatchTargets(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&testGenerator{
		BaseGenerator: *NewBaseGenerator("builder", []string{"Builder"}, []TargetKind{TargetStruct}),
	}))

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "model.go"), `package model

// @Builder
type Person struct {
	Name string
}

// @Builder
type Shape interface {
	Area() float64
}

// @Builder
type Celsius float64
`)

	result, err := NewScanner(WithAnnotationFilter("Builder")).Scan(context.Background(), tmpDir)
	require.NoError(t, err)
	require.Len(t, result.Structs, 1)
	require.Len(t, result.Types, 2)

	dispatch, err := registry.DispatchTargets(result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interface Shape")
	assert.Contains(t, err.Error(), "named type Celsius")
	assert.Contains(t, err.Error(), "model.go:")

	require.Len(t, dispatch["builder"], 1)
	assert.Equal(t, "Person", dispatch["builder"][0].Target.Name)
}

func TestScanner(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "test.go"), `package test

// @Builder(prefix=`+"`With`"+`)
type User struct {
	ID   uint
	Name string
}

type (
	// @Builder
	Order struct{ ID uint }

	Plain struct{}
)

// @Builder
type Alias = User

// @Other
func Helper() {}
`)
	// 生成文件与测试文件不参与扫描
	writeFile(t, filepath.Join(tmpDir, "gen.go"), "// Code generated by gobuilder. DO NOT EDIT.\n\npackage test\n\n// @Builder\ntype Generated struct{}\n")
	writeFile(t, filepath.Join(tmpDir, "x_test.go"), "package test\n\n// @Builder\ntype InTest struct{}\n")

	result, err := NewScanner(WithScannerLogger(quietLogger())).Scan(context.Background(), tmpDir)
	require.NoError(t, err)

	names := func(ats []*AnnotatedTarget) []string {
		var out []string
		for _, at := range ats {
			out = append(out, at.Target.Name)
		}
		return out
	}
	assert.ElementsMatch(t, []string{"User", "Order"}, names(result.Structs))
	assert.Equal(t, []string{"Alias"}, names(result.Types))
	assert.Equal(t, "alias", result.Types[0].Target.Shape())

	user := result.ByAnnotation("Builder")
	require.NotEmpty(t, user)
	for _, at := range result.Structs {
		assert.Equal(t, TargetStruct, at.Target.Kind)
		assert.Equal(t, "test", at.Target.PackageName)
		if at.Target.Name == "User" {
			assert.Equal(t, "With", GetAnnotation(at.Annotations, "Builder").GetParam("prefix"))
			assert.Equal(t, 4, at.Target.Position.Line)
		}
	}
}

func TestScannerWithFilter(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "test.go"), `package test

// @Builder
type User struct {}

// @Mapper
type Order struct {}
`)

	result, err := ScanWithFilter(context.Background(), []string{"Builder"}, tmpDir)
	require.NoError(t, err)
	require.Len(t, result.Structs, 1)
	assert.Equal(t, "User", result.Structs[0].Target.Name)
}

func TestScannerParseError(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "ok.go"), "package test\n\n// @Builder\ntype User struct{}\n")
	writeFile(t, filepath.Join(tmpDir, "broken.go"), "package test\n\n// @Builder\n// @TestGen\ntype Order struct {\n")
	// 没有注解的文件不做 AST 解析，语法错误不影响扫描
	writeFile(t, filepath.Join(tmpDir, "other.go"), "package test\n\nfunc f( {\n")

	_, err := ScanWithFilter(context.Background(), []string{"Builder"}, tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.go")
	assert.NotContains(t, err.Error(), "other.go")

	_, err = RunWithOptionsAndStats(context.Background(), &RunOptions{
		Registry: newGGTestRegistry(t),
		Patterns: []string{tmpDir},
		Logger:   quietLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "扫描失败")
}

func TestScannerRecursive(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "root.go"), "package root\n// @Builder\ntype RootModel struct {}\n")
	writeFile(t, filepath.Join(tmpDir, "sub", "sub.go"), "package sub\n// @Builder\ntype SubModel struct {}\n")
	writeFile(t, filepath.Join(tmpDir, "testdata", "skip.go"), "package skip\n// @Builder\ntype Skipped struct {}\n")
	writeFile(t, filepath.Join(tmpDir, "_hidden", "skip.go"), "package skip\n// @Builder\ntype Hidden struct {}\n")

	scanner := NewScanner(WithWorkers(2))

	result, err := scanner.Scan(context.Background(), tmpDir+"/...")
	require.NoError(t, err)
	assert.Len(t, result.Structs, 2)

	result, err = scanner.Scan(context.Background(), tmpDir)
	require.NoError(t, err)
	assert.Len(t, result.Structs, 1, "非递归模式只扫描当前目录")

	result, err = scanner.Scan(context.Background(), filepath.Join(tmpDir, "sub", "sub.go"))
	require.NoError(t, err)
	assert.Len(t, result.Structs, 1)

	_, err = scanner.Scan(context.Background(), filepath.Join(tmpDir, "missing"))
	assert.Error(t, err)
}

func TestPackageDirective(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "doc.go"), "//go:gobuilder: -output `all_gen` plugin:builder -output \"builders gen\"\npackage test\n")
	writeFile(t, filepath.Join(tmpDir, "model.go"), "package test\n\n// @Builder\ntype User struct{}\n")

	result, err := NewScanner().Scan(context.Background(), tmpDir)
	require.NoError(t, err)

	cfg, ok := result.PackageConfigs[tmpDir]
	require.True(t, ok)
	assert.Equal(t, "all_gen", cfg.DefaultOutput)
	assert.Equal(t, "builders gen", cfg.GetPluginOutput("builder"))
	assert.Equal(t, "all_gen", cfg.GetPluginOutput("other"))

	ctx := &GenerateContext{PackageConfigs: result.PackageConfigs}
	assert.Same(t, cfg, ctx.GetPackageConfig(filepath.Join(tmpDir, "model.go")))
	assert.Nil(t, (&GenerateContext{}).GetPackageConfig("x.go"))
	assert.Equal(t, "", (*PackageConfig)(nil).GetPluginOutput("builder"))
}

func TestParseDirectiveLine(t *testing.T) {
	assert.Nil(t, parseDirectiveLine("", "/a/b.go"))
	assert.Nil(t, parseDirectiveLine("plugin:builder", "/a/b.go"))

	cfg := parseDirectiveLine("plugin:Builder -output 'x y'", "/a/b.go")
	require.NotNil(t, cfg)
	assert.Equal(t, "/a", cfg.PackageDir)
	assert.Equal(t, map[string]string{"builder": "x y"}, cfg.PluginOutputs)

	assert.Equal(t, []string{"-output", "`a b`", "plugin:x"}, splitDirectiveArgs("-output  `a b`\tplugin:x"))
}

func TestGetOutputPath(t *testing.T) {
	target := &Target{Name: "HTTPClient", PackageName: "net", FilePath: "/src/net/client.go"}
	ann := &Annotation{Name: "Builder", Params: map[string]string{}}
	pkgCfg := &PackageConfig{DefaultOutput: "pkg_default", PluginOutputs: map[string]string{"builder": "pkg_builder"}}

	tests := []struct {
		name    string
		ann     map[string]string
		pkgCfg  *PackageConfig
		cmd     string
		want    string
		wantErr bool
	}{
		{name: "默认文件名", want: "/src/net/client_builder.go"},
		{name: "命令行", cmd: "cmd_out", want: "/src/net/cmd_out.go"},
		{name: "包级插件配置优先于命令行", pkgCfg: pkgCfg, cmd: "cmd_out", want: "/src/net/pkg_builder.go"},
		{name: "包级默认配置", pkgCfg: &PackageConfig{DefaultOutput: "pkg_default"}, want: "/src/net/pkg_default.go"},
		{name: "注解优先", ann: map[string]string{"output": "$PACKAGE_$STRUCT"}, pkgCfg: pkgCfg, want: "/src/net/net_http_client.go"},
		{name: "sprig 模板", ann: map[string]string{"output": "{{ .Struct | snakecase }}_b.go"}, want: "/src/net/http_client_b.go"},
		{name: "子目录", ann: map[string]string{"output": "gen/{{ .File | upper }}"}, want: "/src/net/gen/CLIENT.go"},
		{name: "绝对路径", ann: map[string]string{"output": "/tmp/out.go"}, want: "/tmp/out.go"},
		{name: "模板错误", ann: map[string]string{"output": "{{ .Missing }}"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ann.Params = tt.ann
			got, err := GetOutputPath(target, ann, "$FILE_builder.go", tt.pkgCfg, "builder", tt.cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestGetOutputPath_StructInitialisms(t *testing.T) {
	for name, want := range map[string]string{
		"HTTPServer":                "http_server_builder.go",
		"HTTPServerHandlerForURLID": "http_server_handler_for_url_id_builder.go",
		"TLSConfig":                 "tls_config_builder.go",
	} {
		target := &Target{Name: name, PackageName: "net", FilePath: "/src/net/server.go"}
		got, err := GetOutputPath(target, nil, "$STRUCT_builder", nil, "builder", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/src/net/"+want), got, name)
	}
}

// ggTestGenerator 为每个目标输出一个函数
type ggTestGenerator struct {
	BaseGenerator
	fail    map[string]bool // 目标名 -> 是否报错
	panicOn string          // 遇到该目标时 panic
}

func (g *ggTestGenerator) Generate(ctx *GenerateContext) (*GenerateResult, error) {
	result := NewGenerateResult()

	for _, target := range ctx.Targets {
		if target.Target.Name == g.panicOn {
			panic("alias already used")
		}
		if g.fail[target.Target.Name] {
			result.AddError(errors.New("bad target " + target.Target.Name))
			continue
		}

		gen := gg.New()
		gen.SetPackage(target.Target.PackageName)
		gen.Body().NewFunction("Describe"+target.Target.Name).
			AddResult("", "string").
			AddBody(gg.Return(gg.Lit("describing " + target.Target.Name)))

		outputPath, err := GetOutputPath(target.Target, GetAnnotation(target.Annotations, "TestGen"),
			"$STRUCT_describe.go", ctx.GetPackageConfig(target.Target.FilePath), g.Name(), ctx.DefaultOutput)
		if err != nil {
			result.AddError(err)
			continue
		}
		result.AddDefinition(outputPath, gen)
	}

	return result, nil
}

func newGGTestRegistry(t *testing.T, fail ...string) *Registry {
	registry := NewRegistry()
	gen := &ggTestGenerator{
		BaseGenerator: *NewBaseGenerator("testgen", []string{"TestGen"}, []TargetKind{TargetStruct}),
		fail:          map[string]bool{},
	}
	for _, name := range fail {
		gen.fail[name] = true
	}
	require.NoError(t, registry.Register(gen))
	return registry
}

const runFixture = `package test

// @TestGen
type User struct {
	ID   uint
	Name string
}

// @TestGen
type Order struct {
	ID     uint
	Amount float64
}
`

func TestRunWritesFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "model.go"), runFixture)

	for _, async := range []bool{false, true} {
		stats, err := RunWithOptionsAndStats(context.Background(), &RunOptions{
			Registry: newGGTestRegistry(t),
			Patterns: []string{tmpDir},
			Async:    async,
			Logger:   quietLogger(),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TargetCount)

		content, err := os.ReadFile(filepath.Join(tmpDir, "user_describe.go"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "func DescribeUser() string")
		assert.Contains(t, string(content), GeneratedHeader)
		assert.Contains(t, string(content), "// ================ testgen ================")

		_, err = os.Stat(filepath.Join(tmpDir, "order_describe.go"))
		assert.NoError(t, err)

		if !async {
			assert.Equal(t, 2, stats.FileCount)
		} else {
			// 第二次运行内容不变
			assert.Equal(t, 0, stats.FileCount)
			assert.Equal(t, 2, stats.UnchangedCount)
		}
	}
}

func TestRunAbortsOnError(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "model.go"), runFixture)

	_, err := RunWithOptionsAndStats(context.Background(), &RunOptions{
		Registry: newGGTestRegistry(t, "Order"),
		Patterns: []string{tmpDir},
		Logger:   quietLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad target Order")

	// User 本身没有问题，但任何错误都会阻止写入
	_, statErr := os.Stat(filepath.Join(tmpDir, "user_describe.go"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunRecoversGeneratorPanic(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "model.go"), runFixture)

	for _, async := range []bool{false, true} {
		registry := newGGTestRegistry(t)
		gen, _ := registry.GetByName("testgen")
		gen.(*ggTestGenerator).panicOn = "Order"

		_, err := RunWithOptionsAndStats(context.Background(), &RunOptions{
			Registry: registry,
			Patterns: []string{tmpDir},
			Async:    async,
			Logger:   quietLogger(),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "生成器 testgen 执行失败")
		assert.Contains(t, err.Error(), "alias already used")

		_, statErr := os.Stat(filepath.Join(tmpDir, "user_describe.go"))
		assert.True(t, os.IsNotExist(statErr))
	}
}

func TestRunRejectsUnsupportedTarget(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "model.go"), runFixture+"\n// @TestGen\ntype Reader interface{ Read() }\n")

	_, err := RunWithOptionsAndStats(context.Background(), &RunOptions{
		Registry: newGGTestRegistry(t),
		Patterns: []string{tmpDir},
		Logger:   quietLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interface Reader")

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "不应写入任何文件")
}

func TestRunInvalidParam(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "model.go"), "package test\n\n// @Test(prefx=1)\ntype User struct{}\n")

	registry := NewRegistry()
	require.NoError(t, registry.Register(newMockGenerator("test", []string{"Test"}, []TargetKind{TargetStruct}, testParams{})))

	err := RunWithOptions(context.Background(), &RunOptions{Registry: registry, Patterns: []string{tmpDir}, Logger: quietLogger()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefx")
}

func TestRunDryRun(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "model.go"), runFixture)

	var out bytes.Buffer
	stats, err := RunWithOptionsAndStats(context.Background(), &RunOptions{
		Registry: newGGTestRegistry(t),
		Patterns: []string{tmpDir},
		DryRun:   true,
		Logger:   quietLogger(),
		Stdout:   &out,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FileCount)

	assert.Contains(t, out.String(), "--- /dev/null")
	assert.Contains(t, out.String(), "+func DescribeUser() string {")

	_, statErr := os.Stat(filepath.Join(tmpDir, "user_describe.go"))
	assert.True(t, os.IsNotExist(statErr), "dry-run 不写文件")
}

func TestRunNoRegistry(t *testing.T) {
	_, err := RunWithOptionsAndStats(context.Background(), &RunOptions{Registry: NewRegistry(), Logger: quietLogger()})
	assert.Error(t, err)
}

func TestMergeDefinitionsWithSeparator(t *testing.T) {
	a := gg.New()
	a.SetPackage("p")
	a.Body().NewFunction("A")
	b := gg.New()
	b.SetPackage("p")
	b.Body().NewFunction("B")

	merged, err := mergeDefinitionsWithSeparator([]*gg.Generator{a, b}, []string{"first", "second"})
	require.NoError(t, err)
	code := merged.String()
	assert.Contains(t, code, "// ================ first ================")
	assert.Contains(t, code, "// ================ second ================")
	assert.Less(t, strings.Index(code, "func A"), strings.Index(code, "func B"))

	c := gg.New()
	c.SetPackage("q")
	_, err = mergeDefinitionsWithSeparator([]*gg.Generator{a, c}, nil)
	assert.Error(t, err)

	_, err = mergeDefinitionsWithSeparator(nil, nil)
	assert.Error(t, err)
}
