package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

// Format 格式化源码并整理 imports
func Format(path string, src []byte) ([]byte, error) {
	out, err := imports.Process(path, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("格式化 %s 失败: %w", path, err)
	}
	return out, nil
}

// WriteFormat 格式化后写入文件
func WriteFormat(path string, src []byte) error {
	out, err := Format(path, src)
	if err != nil {
		return err
	}
	return WriteFile(path, out)
}

// WriteFile 写入文件，目录不存在时自动创建
func WriteFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return os.WriteFile(path, content, 0644)
}

// CheckSyntax 只检查语法，不修改 imports
func CheckSyntax(path string, src []byte) error {
	_, err := imports.Process(path, src, &imports.Options{
		Fragment:   true,
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true,
	})
	return err
}
