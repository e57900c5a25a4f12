package clash

import (
	. "github.com/samber/mo"

	buildkit "github.com/donutnomad/gobuilder/buildergen/testdata/otherkit"
	mo "github.com/donutnomad/gobuilder/buildergen/testdata/othermo"
)

// 导入名与生成代码使用的 mo、buildkit 相同，但指向其他包

// @Builder
type Clash struct {
	Thing mo.Thing
	Flag  buildkit.Flag
	Maybe Option[mo.Thing]
	Both  map[buildkit.Flag]Either[mo.Thing, int]
}
