package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meetlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultInputDir, cfg.InputDir)
	assert.Equal(t, DefaultOutputFile, cfg.OutputFile)
	assert.Equal(t, DefaultMinAttendees, cfg.MinAttendees)
	assert.Equal(t, DefaultDomainSuffix, cfg.Group.DomainSuffix)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Floor())
	assert.Empty(t, cfg.TitlePrefix())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
input_dir: exports
date_floor: "2023-06-15"
personal:
  exclusions: [Old@Example.com, spam@example.com]
group:
  self_email: Frank@Example.com
  self_name: Frank Harris
  exclusions: [bot@example.com]
`)
	t.Setenv("MEETLOG_OUTPUT_FILE", "report.csv")
	t.Setenv("MEETLOG_GROUP_DOMAIN_SUFFIX", "@resource.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "exports", cfg.InputDir)
	assert.Equal(t, "report.csv", cfg.OutputFile)
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), cfg.Floor())
	assert.Equal(t, "between Frank Harris and ", cfg.TitlePrefix())

	personal := cfg.PersonalRules("Me@Example.com")
	assert.Equal(t, "me@example.com", personal.SelfEmail)
	assert.Equal(t, []string{"old@example.com", "spam@example.com", ""}, personal.Excluded)
	assert.Equal(t, 2, personal.MinAttendees)

	group := cfg.GroupRules("Cal@group.calendar.google.com")
	assert.Equal(t, "frank@example.com", group.SelfEmail)
	assert.Equal(t, []string{"bot@example.com", "cal@group.calendar.google.com"}, group.Excluded)
	assert.Equal(t, "@resource.example.com", group.DomainSuffix)
	assert.Zero(t, group.MinAttendees)
}

func TestLoad_EnvList(t *testing.T) {
	t.Setenv("MEETLOG_PERSONAL_EXCLUSIONS", "a@x.com,b@x.com")
	t.Setenv("MEETLOG_GROUP_TITLE_PREFIX", "with ")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, cfg.Personal.Exclusions)
	assert.Equal(t, "with ", cfg.TitlePrefix())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "input_dir: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("bad date floor", func(t *testing.T) {
		_, err := Load(writeConfig(t, `date_floor: "01/01/2024"`))
		assert.ErrorContains(t, err, "date_floor")
	})

	t.Run("negative attendees", func(t *testing.T) {
		_, err := Load(writeConfig(t, "min_attendees: -1"))
		assert.ErrorContains(t, err, "min_attendees")
	})
}
