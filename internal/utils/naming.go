package utils

import (
	"go/token"
	"strings"
	"unicode"
)

// LowerFirst 首字母小写
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// LowerCamel 转为小驼峰，开头的缩略词整体小写
//
//	Name    -> name
//	TLS     -> tls
//	URLPath -> urlPath
//	UTF8    -> utf8
func LowerCamel(s string) string {
	r := []rune(s)
	n := 0
	for n < len(r) && unicode.IsUpper(r[n]) {
		n++
	}
	// 缩略词的最后一个大写字母属于下一个单词
	end := n
	if n > 1 && n < len(r) && unicode.IsLower(r[n]) {
		end = n - 1
	}
	for i := 0; i < end; i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

// UpperFirst 首字母大写
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// IsExported 标识符是否导出
func IsExported(name string) bool {
	return token.IsExported(name)
}

// SafeIdent 生成不与 Go 关键词冲突的标识符
func SafeIdent(name string) string {
	if token.IsKeyword(name) {
		return name + "Val"
	}
	return name
}

// commonInitialisms 常见首字母缩略词，与 GORM 保持一致
// 替换时按列表顺序匹配，HTTP 必须在 HTTPS 之前，否则 HTTPServer 会被拆成 Https+erver
var commonInitialisms = []string{
	"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS",
	"ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP",
	"SSH", "TLS", "TTL", "UID", "UI", "UUID", "URI", "URL", "UTF8", "VM",
	"XML", "XSRF", "XSS",
}

// initialisms 把缩略词替换为首字母大写形式：HTTP -> Http
var initialisms = newInitialismReplacer(commonInitialisms)

func newInitialismReplacer(words []string) *strings.Replacer {
	args := make([]string, 0, len(words)*2)
	for _, w := range words {
		args = append(args, w, w[:1]+strings.ToLower(w[1:]))
	}
	return strings.NewReplacer(args...)
}

// ToSnakeCase 驼峰转蛇形，用于输出文件名中的 $STRUCT 变量
// 规则与 gorm/schema/naming.go 的 toDBName 一致
func ToSnakeCase(name string) string {
	if name == "" {
		return ""
	}

	value := initialisms.Replace(name)

	var (
		buf                            strings.Builder
		lastCase, nextCase, nextNumber bool
		curCase                        = isUpper(value[0])
	)

	for i, v := range value[:len(value)-1] {
		nextCase = isUpper(value[i+1])
		nextNumber = value[i+1] >= '0' && value[i+1] <= '9'

		if curCase {
			if !(lastCase && (nextCase || nextNumber)) && i > 0 && value[i-1] != '_' && value[i+1] != '_' {
				buf.WriteByte('_')
			}
			buf.WriteRune(v + 32)
		} else {
			buf.WriteRune(v)
		}

		lastCase = curCase
		curCase = nextCase
	}

	last := value[len(value)-1]
	if curCase {
		if !lastCase && len(value) > 1 {
			buf.WriteByte('_')
		}
		buf.WriteByte(last + 32)
	} else {
		buf.WriteByte(last)
	}

	return buf.String()
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}
