package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/gtotrainer/internal/game"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestParseResolve(t *testing.T) {
	cli, ctx := parseCLI(t, "resolve", "AhKd", "--board", "Ks7c2d", "--pot", "6", "--bet", "0", "-p", "CO")
	assert.Equal(t, "resolve <hand>", ctx.Command())

	s, err := cli.Resolve.situation()
	require.NoError(t, err)
	assert.Equal(t, game.Flop, s.Stage)
	assert.Equal(t, game.CO, s.Position)
	assert.Equal(t, 6.0, s.Pot)
	assert.Equal(t, 100.0, s.Stack)
	assert.Equal(t, game.FacingNone, s.Facing)
}

func TestResolveSituationErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  ResolveCmd
	}{
		{"bad hand", ResolveCmd{Hand: "AhAh", Position: "BTN", Players: 6, Pot: 1.5, Bet: 1, Stack: 100, Facing: "none"}},
		{"two card board", ResolveCmd{Hand: "AhKd", Board: "Ks7c", Position: "BTN", Players: 6, Pot: 6, Stack: 100, Facing: "none"}},
		{"bad position", ResolveCmd{Hand: "AhKd", Position: "DEALER", Players: 6, Pot: 1.5, Bet: 1, Stack: 100, Facing: "none"}},
		{"position not seated", ResolveCmd{Hand: "AhKd", Position: "UTG+2", Players: 6, Pot: 1.5, Bet: 1, Stack: 100, Facing: "none"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cmd.situation()
			assert.Error(t, err)
		})
	}
}

func TestParseHistoryFilters(t *testing.T) {
	cli, ctx := parseCLI(t, "history", "list", "--stage", "turn", "--session", "01H5N0ET5Q6MT3V7MS1234ABCD", "--limit", "5")
	assert.Equal(t, "history list", ctx.Command())

	f, err := cli.History.List.filter()
	require.NoError(t, err)
	require.NotNil(t, f.Stage)
	assert.Equal(t, game.Turn, *f.Stage)
	assert.Equal(t, "01h5n0et5q6mt3v7ms1234abcd", f.SessionID, "ids are matched in lower case")
	assert.Equal(t, 5, cli.History.List.Limit)

	cli, _ = parseCLI(t, "history", "export", "out.toml")
	f, err = cli.History.Export.filter()
	require.NoError(t, err)
	assert.Nil(t, f.Stage)
}

func TestHistoryFiltersRejectMalformedIDs(t *testing.T) {
	cli, _ := parseCLI(t, "history", "list", "--hand", "not-a-hand")
	_, err := cli.History.List.filter()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--hand")

	cli, _ = parseCLI(t, "history", "export", "--session", "01h5n0et5q6mt3v7ms1234abcu", "out.toml")
	_, err = cli.History.Export.filter()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--session")

	cli, _ = parseCLI(t, "history", "replay", "nope")
	_, err = readRecords(&cli.Globals, FilterFlags{Hand: cli.History.Replay.Hand, Stage: "any"})
	assert.Error(t, err, "replay rejects the id before touching storage")
}

func TestParseDrillDefaults(t *testing.T) {
	cli, ctx := parseCLI(t, "drill", "--stage", "river")
	assert.Equal(t, "drill", ctx.Command())
	assert.Equal(t, "river", cli.Drill.Stage)
	assert.Zero(t, cli.Drill.Hands)
	assert.Equal(t, "gto-trainer.hcl", filepath.Base(cli.Config))
}

func TestTendenciesValidate(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"flop": {"BTN": {"fold": 2}}}`), 0o644))
	assert.Error(t, (&TendenciesValidateCmd{File: bad}).Run())
}
