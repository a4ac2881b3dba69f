package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, files map[string]string, threshold int) *Manager {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		writeFile(t, filepath.Join(dir, name), body)
	}
	c := NewCatalog(dir, "", testLogger(t))
	require.NoError(t, c.Rescan())
	return NewManager(c, testLogger(t), threshold)
}

func TestManagerStartsIdle(t *testing.T) {
	m := newTestManager(t, nil, 20)

	snap := m.Snapshot()
	assert.Equal(t, "idle", snap.State)

	_, _, err := m.Active()
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestSelectMovesToReady(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"cities.csv": "city,pop\nporto,240000\nbraga,193000\n",
	}, 20)

	snap, err := m.Select("cities")
	require.NoError(t, err)

	assert.Equal(t, "ready", snap.State)
	assert.Equal(t, "cities", snap.Name)
	assert.Equal(t, 2, snap.Rows)
	assert.Equal(t, 2, snap.Columns)
	assert.NotEmpty(t, snap.LoadedAt)

	name, tbl, err := m.Active()
	require.NoError(t, err)
	assert.Equal(t, "cities", name)
	assert.Equal(t, 2, tbl.NumRow())
}

func TestSelectUnknownKeepsCurrentState(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"cities.csv": "city,pop\nporto,240000\n",
	}, 20)

	_, err := m.Select("cities")
	require.NoError(t, err)

	_, err = m.Select("ghost")
	assert.ErrorIs(t, err, ErrUnknownDataset)

	name, _, err := m.Active()
	require.NoError(t, err)
	assert.Equal(t, "cities", name)
	assert.Equal(t, "ready", m.Snapshot().State)
}

func TestSelectBadFileMovesToFailed(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"broken.csv": "a,b\n1\n",
	}, 20)

	snap, err := m.Select("broken")
	require.Error(t, err)

	assert.Equal(t, "failed", snap.State)
	assert.NotEmpty(t, snap.Error)

	_, _, err = m.Active()
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestSelectRecoversAfterFailure(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"broken.csv": "a,b\n1\n",
		"cities.csv": "city,pop\nporto,240000\n",
	}, 20)

	_, err := m.Select("broken")
	require.Error(t, err)

	snap, err := m.Select("cities")
	require.NoError(t, err)
	assert.Equal(t, "ready", snap.State)
	assert.Empty(t, snap.Error)
}

func TestColumnClasses(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"mix.csv": "color,price,flag,rate\nred,100,0,0.5\ngreen,200,1,0.7\nblue,300,0,0.9\n",
	}, 3)

	_, err := m.Select("mix")
	require.NoError(t, err)

	cls, err := m.ColumnClasses()
	require.NoError(t, err)

	assert.Equal(t, []string{"color", "price", "flag", "rate"}, cls.All)
	assert.Equal(t, []string{"price", "flag", "rate"}, cls.Numerical)
	// flag has 2 distinct values, under the threshold of 3; price has 3.
	assert.Equal(t, []string{"color", "flag"}, cls.Categorical)
}

func TestColumnClassesWithoutDataset(t *testing.T) {
	m := newTestManager(t, nil, 20)

	_, err := m.ColumnClasses()
	assert.ErrorIs(t, err, ErrNoDataset)
}
