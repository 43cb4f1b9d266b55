package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/ballbyball/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.DefaultOvers, convey.ShouldEqual, 20)
			convey.So(cfg.MaxOvers, convey.ShouldEqual, 50)
			convey.So(cfg.APIKeys, convey.ShouldContainKey, "dev-key")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs that break an invariant", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }},
			{"zero queue", func(c *config.Config) { c.RefreshQueueSize = 0 }},
			{"zero workers", func(c *config.Config) { c.WorkerCount = 0 }},
			{"zero leaderboard cap", func(c *config.Config) { c.MaxLeaderboardLimit = 0 }},
			{"zero max overs", func(c *config.Config) { c.MaxOvers = 0 }},
			{"default above max", func(c *config.Config) { c.DefaultOvers = c.MaxOvers + 1 }},
			{"no api keys", func(c *config.Config) { c.APIKeys = nil }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" is rejected as invalid config", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
