package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	d, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSettingsRoundTrip(t *testing.T) {
	d := openTest(t)

	v, err := d.GetSetting("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, d.SetSetting(KeyLastRoute, "/tasks"))
	require.NoError(t, d.SetSetting(KeyLastRoute, "/projects/p1"))

	v, err = d.GetSetting(KeyLastRoute)
	require.NoError(t, err)
	assert.Equal(t, "/projects/p1", v)
}

func TestOrganizationSlugDefaultIsWrittenBack(t *testing.T) {
	d := openTest(t)

	slug, err := d.OrganizationSlug()
	require.NoError(t, err)
	assert.Equal(t, DefaultOrganizationSlug, slug)

	stored, err := d.GetSetting(KeyOrganizationSlug)
	require.NoError(t, err)
	assert.Equal(t, DefaultOrganizationSlug, stored)
}

func TestSetOrganizationSlug(t *testing.T) {
	d := openTest(t)

	require.Error(t, d.SetOrganizationSlug(""))
	require.NoError(t, d.SetOrganizationSlug("acme"))

	slug, err := d.OrganizationSlug()
	require.NoError(t, err)
	assert.Equal(t, "acme", slug)
}

func TestSettingsSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	d, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, d.SetOrganizationSlug("acme"))
	require.NoError(t, d.Close())

	d, err = Open(dir)
	require.NoError(t, err)
	defer d.Close()
	slug, err := d.OrganizationSlug()
	require.NoError(t, err)
	assert.Equal(t, "acme", slug)
	assert.FileExists(t, filepath.Join(dir, "taskboard.db"))
}

func TestDefaultDataDirHonoursXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "taskboard"), dir)
}
