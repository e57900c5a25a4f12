package pkgresolver

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/donutnomad/gobuilder"

func newTestResolver(t *testing.T) *Resolver {
	wd, err := os.Getwd()
	require.NoError(t, err)
	root, ok := FindModuleRoot(wd)
	require.True(t, ok, "未找到项目根目录")
	return New(root)
}

func TestIsStdLib(t *testing.T) {
	tests := []struct {
		importPath string
		want       bool
	}{
		{"fmt", true},
		{"net/http", true},
		{"encoding/json", true},
		{"crypto/sha256", true},
		{"internal/cpu", false},
		{"github.com/samber/lo", false},
		{"golang.org/x/tools", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.importPath, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStdLib(tt.importPath))
		})
	}
}

func TestResolver_PackageName(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name       string
		importPath string
		want       string
	}{
		{"标准库", "fmt", "fmt"},
		{"标准库子包", "net/http", "http"},
		{"项目内部包", modulePath + "/internal/typeexpr", "typeexpr"},
		{"项目根包", modulePath + "/buildkit", "buildkit"},
		{"显式别名不影响真实包名", modulePath + "/internal/pkgresolver/testdata/aliasedpkg", "aliasedpkg"},
		{"包名与目录名不一致", modulePath + "/internal/pkgresolver/testdata/gg", "g2"},
		{"找不到时按约定推断", "example.com/nowhere/go-thing/v3", "thing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.PackageName(tt.importPath))
		})
	}
}

func TestResolver_Cache(t *testing.T) {
	r := newTestResolver(t)

	first := r.PackageName(modulePath + "/internal/pkgresolver/testdata/gg")
	v, ok := r.cache.Load(modulePath + "/internal/pkgresolver/testdata/gg")
	require.True(t, ok)
	assert.Equal(t, first, v)
	assert.Equal(t, first, r.PackageName(modulePath+"/internal/pkgresolver/testdata/gg"))
}

func TestGuessPackageName(t *testing.T) {
	tests := map[string]string{
		"github.com/samber/mo":            "mo",
		"github.com/Masterminds/sprig/v3": "sprig",
		"github.com/mattn/go-runewidth":   "runewidth",
		"gopkg.in/yaml.v3":                "yaml",
		"github.com/foo/bar-baz":          "barbaz",
		"github.com/foo/v2thing":          "v2thing",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, GuessPackageName(in))
		})
	}
}

func TestReadPackageName(t *testing.T) {
	name, err := ReadPackageName("testdata/gg")
	require.NoError(t, err)
	assert.Equal(t, "g2", name)

	_, err = ReadPackageName("testdata/missing")
	assert.Error(t, err)
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "github.com/!masterminds/sprig/v3", escapePath("github.com/Masterminds/sprig/v3"))
	assert.Equal(t, "github.com/samber/mo", escapePath("github.com/samber/mo"))
}

func TestModulePath(t *testing.T) {
	r := newTestResolver(t)
	mod, err := ModulePath(r.projectRoot)
	require.NoError(t, err)
	assert.Equal(t, modulePath, mod)
}
