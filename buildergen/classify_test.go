package buildergen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/gobuilder/internal/typeexpr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		src   string
		kind  Kind
		inner string // 分类后的类型
	}{
		{"Option[int]", Optional, "int"},
		{"Option[string]", Optional, "string"},
		{"Option[[]byte]", Optional, "[]byte"},
		{"Option[*time.Time]", Optional, "*time.Time"},
		{"Option[Option[int]]", Optional, "Option[int]"},
		{"Option[map[string]Option[int]]", Optional, "map[string]Option[int]"},

		{"int", Required, "int"},
		{"string", Required, "string"},
		{"mo.Option[int]", Required, "mo.Option[int]"},
		{"Option", Required, "Option"},
		{"Option[K, V]", Required, "Option[K, V]"},
		{"Option[3]", Required, "Option[3]"},
		{"(Option[int])", Required, "(Option[int])"},
		{"*Option[int]", Required, "*Option[int]"},
		{"[]Option[int]", Required, "[]Option[int]"},
		{"map[string]Option[int]", Required, "map[string]Option[int]"},
		{"Optional[int]", Required, "Optional[int]"},
		{"option[int]", Required, "option[int]"},
		{"func() Option[int]", Required, "func() Option[int]"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expr, err := typeexpr.Parse(tt.src)
			require.NoError(t, err)

			c := Classify(expr)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.inner, c.Type.String())
		})
	}
}

// 只看名字：与 mo 无关的 Option 也被视为可选
func TestClassifyByNameOnly(t *testing.T) {
	c := Classify(typeexpr.Generic("Option", typeexpr.Ident("Config")))
	assert.Equal(t, Optional, c.Kind)
	assert.Equal(t, "Config", c.Type.String())

	c = Classify(&typeexpr.Path{})
	assert.Equal(t, Required, c.Kind)
}

// Required 的类型就是原始表达式
func TestClassifyRequiredKeepsExpr(t *testing.T) {
	expr, err := typeexpr.Parse("map[string]int")
	require.NoError(t, err)
	assert.Same(t, expr, Classify(expr).Type)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "optional", Optional.String())
	assert.Equal(t, "required", Required.String())
}
