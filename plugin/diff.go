package plugin

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff 生成磁盘文件与新内容之间的统一 diff，内容相同时返回空字符串
func unifiedDiff(path string, content []byte) (string, error) {
	old, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if string(old) == string(content) {
		return "", nil
	}

	fromFile := path
	if old == nil {
		fromFile = "/dev/null"
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(string(content)),
		FromFile: fromFile,
		ToFile:   path,
		Context:  3,
	})
}
