package catalog_test

import (
	"errors"
	"testing"

	"github.com/okian/raidluck/internal/domain/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCatalog(t *testing.T) {
	Convey("Given baselines for three locales", t, func() {
		baselines := map[string]float64{
			"en":    1.0 / 216.0,
			"es_ES": 0.0078,
			"es_MX": 0.0123,
		}

		Convey("When building a catalog", func() {
			cat, err := catalog.New(baselines)

			Convey("Then construction should succeed", func() {
				So(err, ShouldBeNil)
				So(cat, ShouldNotBeNil)
				So(cat.Len(), ShouldEqual, 3)
			})

			Convey("And known locales should resolve", func() {
				p, err := cat.BaselineFor("en")
				So(err, ShouldBeNil)
				So(p, ShouldAlmostEqual, 1.0/216.0, 1e-15)
			})

			Convey("And unknown locales should fail with ErrUnknownLocale", func() {
				_, err := cat.BaselineFor("fr")
				So(err, ShouldNotBeNil)
				So(errors.Is(err, catalog.ErrUnknownLocale), ShouldBeTrue)
			})

			Convey("And Locales should return the sorted key set", func() {
				So(cat.Locales(), ShouldResemble, []string{"en", "es_ES", "es_MX"})
			})

			Convey("And mutating the source map should not affect the catalog", func() {
				baselines["en"] = 0.9
				p, err := cat.BaselineFor("en")
				So(err, ShouldBeNil)
				So(p, ShouldAlmostEqual, 1.0/216.0, 1e-15)
			})
		})

		Convey("When building with a baseline of zero", func() {
			baselines["bad"] = 0
			_, err := catalog.New(baselines)

			Convey("Then construction should fail", func() {
				So(errors.Is(err, catalog.ErrInvalidBaseline), ShouldBeTrue)
			})
		})

		Convey("When building with a baseline of one", func() {
			baselines["bad"] = 1
			_, err := catalog.New(baselines)

			Convey("Then construction should fail", func() {
				So(errors.Is(err, catalog.ErrInvalidBaseline), ShouldBeTrue)
			})
		})

		Convey("When building with no baselines", func() {
			_, err := catalog.New(nil)

			Convey("Then construction should fail", func() {
				So(errors.Is(err, catalog.ErrEmptyCatalog), ShouldBeTrue)
			})
		})
	})
}
