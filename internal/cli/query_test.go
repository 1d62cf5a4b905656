package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starcat-io/starfov/internal/catalog/catalogtest"
	"github.com/starcat-io/starfov/internal/query"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gaia.sqlite3")
	catalogtest.Write(t, path, []catalogtest.Star{
		{ID: 1, RA: 10, Dec: -45, G: catalogtest.F(9)},
		{ID: 2, RA: 10.05, Dec: -45.02, G: catalogtest.F(7.5)},
		{ID: 3, RA: 200, Dec: 30, G: catalogtest.F(3)},
	})
	return path
}

func TestQueryCone(t *testing.T) {
	path := writeFixture(t)

	out, _, err := runCommand(t, "query", "--catalog="+path, "--limit=10", "10,-45", "0.5")
	require.NoError(t, err)

	var resp query.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	require.Len(t, resp.Stars, 2, "only the two cone members should match")
	require.Equal(t, int64(2), resp.Stars[0].IDOffset, "brightest star first")
	require.Equal(t, int64(1), resp.Stars[1].IDOffset)

	require.Equal(t, 10, resp.Config.Limit)
	require.Equal(t, "circle", resp.Config.FOVType)
	require.Equal(t, path, resp.Config.GaiaSL3)
}

func TestQueryRangesWithMagCut(t *testing.T) {
	path := writeFixture(t)

	out, _, err := runCommand(t, "query", "--catalog="+path,
		"--ralohi=0,20", "--declohi=-50,-40", "--magmax=8")
	require.NoError(t, err)

	var resp query.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	require.Len(t, resp.Stars, 1, "magmax should cut the mag 9 star")
	require.Equal(t, int64(2), resp.Stars[0].IDOffset)
	require.NotNil(t, resp.Config.MagMax)
	require.Equal(t, 8.0, *resp.Config.MagMax)
	require.Equal(t, "radecranges", resp.Config.FOVType)
}

func TestQueryBufferWarning(t *testing.T) {
	path := writeFixture(t)

	out, stderr, err := runCommand(t, "query", "--catalog="+path,
		"--buffer=0.1", "--ralohi=0,20", "--declohi=-50,-40")
	require.NoError(t, err)
	require.Contains(t, stderr, "Warning:  RA,DEC buffer not yet implemented")

	var resp query.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 0.1, resp.Config.RADecBuffer, "buffer is echoed even though ignored")
}

func TestQueryObserverEpoch(t *testing.T) {
	path := writeFixture(t)

	out, _, err := runCommand(t, "query", "--catalog="+path,
		"--obsy=2016.5", "--ppm", "--ralohi=0,20", "--declohi=-50,-40")
	require.NoError(t, err)

	var resp query.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Config.ObsYear)
	require.InDelta(t, 1.0, *resp.Config.ObsYear, 1e-12, "2016.5 is one year past the catalog epoch")
	require.NotNil(t, resp.Config.ObsYearArg)
	require.Equal(t, "2016.5", *resp.Config.ObsYearArg)
}

func TestQueryRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"bad magtype", []string{"query", "--magtype=q", "10,-45", "0.5"}},
		{"bad obsy", []string{"query", "--obsy=notatime", "10,-45", "0.5"}},
		{"short obspos", []string{"query", "--obspos=1,2", "10,-45", "0.5"}},
		{"bad vertex", []string{"query", "10,north"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCommand(t, tc.args...)
			require.Error(t, err)
		})
	}
}
