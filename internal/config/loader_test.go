package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/ekiden/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then the missing race settings should be rejected", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "roster_file")
				convey.So(err.Error(), convey.ShouldContainSubstring, "race_start_date")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("EKIDEN_RACE_START_DATE", "2026-01-05")
			_ = os.Setenv("EKIDEN_ROSTER_FILE", "/etc/ekiden/roster.yaml")
			_ = os.Setenv("EKIDEN_STORAGE_ADAPTER", "redis")
			_ = os.Setenv("EKIDEN_REDIS_DB", "3")
			_ = os.Setenv("EKIDEN_WEBHOOK_URLS", "http://a.example/hook, http://b.example/hook")
			_ = os.Setenv("EKIDEN_NEWS_GAP_POSITIONS", "1,2")
			_ = os.Setenv("EKIDEN_NEWS_EXTREME_HIGH_KM", "42.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RaceStartDate, convey.ShouldEqual, "2026-01-05")
				convey.So(cfg.RosterFile, convey.ShouldEqual, "/etc/ekiden/roster.yaml")
				convey.So(cfg.StorageAdapter, convey.ShouldEqual, config.StorageRedis)
				convey.So(cfg.RedisDB, convey.ShouldEqual, 3)
				convey.So(cfg.WebhookURLs, convey.ShouldResemble, []string{"http://a.example/hook", "http://b.example/hook"})
				convey.So(cfg.NewsGapPositions, convey.ShouldResemble, []int{1, 2})
				convey.So(cfg.NewsExtremeHighKM, convey.ShouldEqual, 42.5)
				convey.So(cfg.Timezone, convey.ShouldEqual, "Asia/Tokyo")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := createTempConfigFile(t, `
race_start_date: "2026-01-05"
timezone: UTC
roster_file: roster.yaml
log_format: json
data_dir: /var/lib/ekiden
news_hours_start: 6
news_hours_end: 20
news_gap_positions: [1, 3]
webhook_urls:
  - http://hooks.example/ekiden
`)

			cfg, err := config.Load(ctx, path)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/var/lib/ekiden")
				convey.So(cfg.NewsHoursStart, convey.ShouldEqual, 6)
				convey.So(cfg.NewsGapPositions, convey.ShouldResemble, []int{1, 3})
				convey.So(cfg.WebhookURLs, convey.ShouldResemble, []string{"http://hooks.example/ekiden"})
			})
		})

		convey.Convey("When the YAML path comes from EKIDEN_CONFIG", func() {
			path := createTempConfigFile(t, "race_start_date: \"2026-01-05\"\nroster_file: r.yaml\n")
			_ = os.Setenv("EKIDEN_CONFIG", path)
			_ = os.Setenv("EKIDEN_DATA_DIR", "/tmp/override")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RosterFile, convey.ShouldEqual, "r.yaml")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/tmp/override")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			path := createTempConfigFile(t, "race_start_date: [unclosed\n")

			cfg, err := config.Load(ctx, path)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			cfg, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with an unknown time zone", func() {
			path := createTempConfigFile(t, "race_start_date: \"2026-01-05\"\nroster_file: r.yaml\ntimezone: Mars/Olympus\n")

			_, err := config.Load(ctx, path)

			convey.Convey("Then it should be rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "timezone")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("EKIDEN_RACE_START_DATE", "2026-01-05")
			_ = os.Setenv("EKIDEN_ROSTER_FILE", "r.yaml")
			_ = os.Setenv("EKIDEN_REDIS_DB", "not-a-number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New()
		cfg.RaceStartDate = "2026-01-05"
		cfg.RosterFile = "roster.yaml"
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		convey.Convey("When the storage adapter is unknown", func() {
			cfg.StorageAdapter = "s3"

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the operating hours are inverted", func() {
			cfg.NewsHoursStart, cfg.NewsHoursEnd = 19, 7

			convey.Convey("Then validation should fail", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the extreme low threshold exceeds the high one", func() {
			cfg.NewsExtremeLowKM, cfg.NewsExtremeHighKM = 45, 40

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a scheduled minute is out of range", func() {
			cfg.NewsLeaderMinute = 60

			convey.Convey("Then validation should fail", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"

			convey.Convey("Then validation should fail", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestConfigDerivedValues(t *testing.T) {
	convey.Convey("Given a config with custom news keys", t, func() {
		cfg := config.New()
		cfg.RaceStartDate = "2026-01-05"
		cfg.Timezone = "Asia/Tokyo"
		cfg.NewsCommentWindowMin = 15
		cfg.NewsPreserveMin = 30
		cfg.NewsGapKM = 1.0

		convey.Convey("Then the detector settings should mirror them", func() {
			s := cfg.NewsSettings()
			convey.So(s.CommentWindow, convey.ShouldEqual, 15*time.Minute)
			convey.So(s.Preserve, convey.ShouldEqual, 30*time.Minute)
			convey.So(s.GapThreshold, convey.ShouldEqual, 1.0)
			convey.So(s.GapPositions, convey.ShouldResemble, []int{1, 3, 5, 10})
		})

		convey.Convey("Then the calendar should anchor day 1 in the zone", func() {
			cal, err := cfg.Calendar()
			convey.So(err, convey.ShouldBeNil)
			convey.So(cal.Location().String(), convey.ShouldEqual, "Asia/Tokyo")
			convey.So(cfg.WebhookTimeout(), convey.ShouldEqual, 2*time.Second)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, config.EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ekiden.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
