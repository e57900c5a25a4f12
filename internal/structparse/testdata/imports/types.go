package imports

import (
	_ "embed"
	tm "time"

	. "github.com/samber/mo"

	"github.com/donutnomad/gobuilder/internal/pkgresolver/testdata/gg"
)

type Event struct {
	At      tm.Time
	Kind    g2.Type
	Comment Option[string]
}
