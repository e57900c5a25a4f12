package example

import (
	"net"
	"strconv"
	"time"

	. "github.com/samber/mo"
)

//go:generate go run github.com/donutnomad/gobuilder .

// 示例 1: 必填字段与可选字段
// @Builder
type Person struct {
	Name string
	Age  Option[uint32]
}

// 示例 2: 只有必填字段
// @Builder
type Point struct {
	X, Y int
}

// 示例 3: 复合类型，可选字段的类型参数可以是任意类型
// @Builder
type Command struct {
	Executable string
	Args       []string
	Env        map[string]string
	CurrentDir Option[string]
	Timeout    Option[time.Duration]
}

// 示例 4: 自定义构造方法名与 setter 前缀，未导出字段
// @Builder(constructor=`NewBuilder`, prefix=`With`)
type Endpoint struct {
	host string
	Port uint16
	TLS  Option[bool]
}

// Addr 返回 host:port
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.host, strconv.Itoa(int(e.Port)))
}
