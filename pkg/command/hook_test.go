package command_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/command"
)

func TestParseHook(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    command.Hook
		wantErr bool
	}{
		{name: "simple", in: "before.render", want: command.Hook{Phase: "before", Action: "render"}},
		{name: "mixed case", in: "AFTER.Edit", want: command.Hook{Phase: "after", Action: "edit"}},
		{name: "splits on first dot", in: "before.notes.read", want: command.Hook{Phase: "before", Action: "notes.read"}},
		{name: "no dot", in: "render", wantErr: true},
		{name: "empty action", in: "before.", wantErr: true},
		{name: "empty phase", in: ".render", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := command.ParseHook(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, command.ErrInvalidCommand)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMustParseHookPanics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { command.MustParseHook("broken") })
	require.Equal(t, "before.get", command.MustParseHook("before.get").String())
}
