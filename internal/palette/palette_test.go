package palette

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snaptile/internal/layout"
)

type fakeRun struct {
	out   string
	err   error
	stdin string
	name  string
	args  []string
}

func (f *fakeRun) run(stdin string, name string, args ...string) (string, error) {
	f.stdin = stdin
	f.name = name
	f.args = args
	return f.out, f.err
}

func newFake(t *testing.T, name string, f *fakeRun) *dmenuLike {
	t.Helper()
	l, err := NewWithRunner(name, f.run)
	require.NoError(t, err)
	return l.(*dmenuLike)
}

func TestRofiFormatItem_UsesSingleNullSeparator(t *testing.T) {
	t.Parallel()

	l := newFake(t, "rofi", &fakeRun{})
	out := l.formatItem(Item{Label: "Left <third>", Icon: "folder", Meta: "left", IsActive: true})

	assert.Equal(t, 1, strings.Count(out, "\x00"))
	assert.True(t, strings.HasPrefix(out, "<b>Left &lt;third&gt;</b>\x00"), out)
	assert.Contains(t, out, "icon\x1ffolder\x1fmeta\x1fleft")
}

func TestShow(t *testing.T) {
	t.Parallel()

	items := []Item{
		{Label: "one", Action: "a"},
		{Label: "two", Action: "b", IsActive: true},
		{Label: "three", Action: "c"},
	}

	tcs := map[string]struct {
		launcher string
		out      string
		want     string
		wantArgs []string
	}{
		"rofi selects by index": {
			launcher: "rofi",
			out:      "2\n",
			want:     "c",
			wantArgs: []string{"-format", "i", "-selected-row", "1", "-mesg", "msg"},
		},
		"fuzzel selects by index": {
			launcher: "fuzzel",
			out:      "0",
			want:     "a",
			wantArgs: []string{"--index"},
		},
		"dmenu selects by label": {
			launcher: "dmenu",
			out:      "three\n",
			want:     "c",
			wantArgs: []string{"-p", "pick"},
		},
		"wofi selects by label": {
			launcher: "wofi",
			out:      "two",
			want:     "b",
			wantArgs: []string{"--prompt", "pick"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := &fakeRun{out: tc.out}
			l := newFake(t, tc.launcher, f)

			got, err := l.Show("pick", items, "msg")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Action)
			assert.Equal(t, tc.launcher, f.name)
			assert.Subset(t, f.args, tc.wantArgs)
			assert.Len(t, strings.Split(f.stdin, "\n"), len(items))
		})
	}
}

func TestShowErrors(t *testing.T) {
	t.Parallel()

	items := []Item{{Label: "one", Action: "a"}}

	tcs := map[string]struct {
		run     *fakeRun
		wantErr error
		msg     string
	}{
		"empty output is a cancel": {run: &fakeRun{out: "  \n"}, wantErr: ErrCancelled},
		"runner cancel":            {run: &fakeRun{err: ErrCancelled}, wantErr: ErrCancelled},
		"index out of range":       {run: &fakeRun{out: "7"}, msg: "out of range"},
		"unknown label":            {run: &fakeRun{out: "nope"}, msg: "unknown selection"},
		"runner failure":           {run: &fakeRun{err: errors.New("rofi failed: boom")}, msg: "boom"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			l := newFake(t, "rofi", tc.run)
			_, err := l.Show("pick", items, "")
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.msg != "" {
				assert.Contains(t, err.Error(), tc.msg)
			}
		})
	}
}

func TestNewWithRunnerUnknown(t *testing.T) {
	t.Parallel()

	_, err := NewWithRunner("zenity", (&fakeRun{}).run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown palette launcher")
}

func TestPositionItems(t *testing.T) {
	t.Parallel()

	current := layout.Right
	items := PositionItems(&current)
	require.Len(t, items, len(layout.Positions))

	for i, p := range layout.Positions {
		assert.Equal(t, p.String(), items[i].Action)
		assert.NotEmpty(t, items[i].Label)
		assert.Equal(t, p == layout.Right, items[i].IsActive, p.String())
	}

	for _, item := range PositionItems(nil) {
		assert.False(t, item.IsActive)
	}
}

func TestPickPosition(t *testing.T) {
	t.Parallel()

	f := &fakeRun{out: "Right two-thirds"}
	l := newFake(t, "dmenu", f)

	current := layout.Center
	got, err := PickPosition(l, &current)
	require.NoError(t, err)
	assert.Equal(t, layout.RightTwoThirds, got)

	f = &fakeRun{err: ErrCancelled}
	l = newFake(t, "rofi", f)
	_, err = PickPosition(l, nil)
	assert.ErrorIs(t, err, ErrCancelled)
}
