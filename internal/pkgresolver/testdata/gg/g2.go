// 目录名为 gg，包名为 g2
package g2

type Type int
