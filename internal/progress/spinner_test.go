package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_NonTTY(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		finish func(*Spinner)
		want   string
	}{
		"succeed repeats start message": {
			finish: func(s *Spinner) { s.Succeed("") },
			want:   "[OK] Creating minimal eas.json file\n",
		},
		"succeed with custom message": {
			finish: func(s *Spinner) { s.Succeed("We created a minimal eas.json file") },
			want:   "[OK] We created a minimal eas.json file\n",
		},
		"fail": {
			finish: func(s *Spinner) { s.Fail("") },
			want:   "[FAIL] Creating minimal eas.json file\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			s := NewSpinner(&buf, TerminalCapabilities{})
			s.Start("Creating minimal eas.json file")
			assert.Empty(t, buf.String())

			tt.finish(s)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSelectSymbols(t *testing.T) {
	t.Parallel()

	unicode := SelectSymbols(TerminalCapabilities{SupportsUnicode: true})
	assert.Equal(t, "✔", unicode.Checkmark)
	assert.Equal(t, 14, unicode.SpinnerSet)

	ascii := SelectSymbols(TerminalCapabilities{})
	assert.Equal(t, "[OK]", ascii.Checkmark)
	assert.Equal(t, "[FAIL]", ascii.Failure)
	assert.Equal(t, 9, ascii.SpinnerSet)
}
