package plugin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGenerator 用于测试的 mock 生成器
type mockGenerator struct {
	BaseGenerator
}

func (m *mockGenerator) Generate(ctx *GenerateContext) (*GenerateResult, error) {
	return NewGenerateResult(), nil
}

func newMockGenerator(name string, annotations []string, targets []TargetKind, params any) *mockGenerator {
	return &mockGenerator{
		BaseGenerator: *NewBaseGeneratorWithParamsStruct(name, annotations, targets, params),
	}
}

type helpParams struct {
	Param1 string `param:"name=param1,required=true,default=,description=Required parameter"`
	Param2 string `param:"name=param2,required=false,default=default_value,description=Optional parameter"`
}

func TestFormatHelpText(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newMockGenerator(
		"test-generator", []string{"TestAnnotation"}, []TargetKind{TargetStruct}, helpParams{},
	)))

	helpText := FormatHelpText(registry)

	for _, expected := range []string{
		"@TestAnnotation - test-generator",
		"output",
		"param1 (必填)",
		"param2 [默认: default_value]",
		"Required parameter",
		"Optional parameter",
		"示例:",
		"@TestAnnotation(output=$FILE_gen.go)",
		"snakecase",
		"@TestAnnotation(param2=default_value)",
	} {
		assert.Contains(t, helpText, expected)
	}
}

func TestFormatHelpText_MultipleGenerators(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newMockGenerator("generator2", []string{"Ann2"}, []TargetKind{TargetType}, helpParams{})))
	require.NoError(t, registry.Register(newMockGenerator("generator1", []string{"Ann1"}, []TargetKind{TargetStruct}, nil)))

	helpText := FormatHelpText(registry)

	assert.Contains(t, helpText, "@Ann1 - generator1")
	assert.Contains(t, helpText, "@Ann2 - generator2")
	assert.Less(t, strings.Index(helpText, "generator1"), strings.Index(helpText, "generator2"), "按生成器名称排序")
}

func TestFormatHelpText_EmptyRegistry(t *testing.T) {
	assert.Contains(t, FormatHelpText(NewRegistry()), "(暂无已注册的生成器)")
}

func TestFormatParamDef(t *testing.T) {
	assert.Equal(t, "test, required, Test parameter",
		FormatParamDef(ParamDef{Name: "test", Required: true, Description: "Test parameter"}))
	assert.Equal(t, "opt, optional, default=default, Optional param",
		FormatParamDef(ParamDef{Name: "opt", Default: "default", Description: "Optional param"}))
}
