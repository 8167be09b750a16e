package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func fakeWriter(mode Mode, tty *bytes.Buffer, ttyErr error, native func(string) error) *Writer {
	return &Writer{
		mode: mode,
		openTTY: func() (io.WriteCloser, error) {
			if ttyErr != nil {
				return nil, ttyErr
			}
			return nopCloser{tty}, nil
		},
		native: native,
	}
}

func TestWriteText_OSC52(t *testing.T) {
	var tty bytes.Buffer
	nativeCalled := false
	w := fakeWriter(Auto, &tty, nil, func(string) error { nativeCalled = true; return nil })

	require.NoError(t, w.WriteText("hello"))
	assert.False(t, nativeCalled)
	assert.Contains(t, tty.String(), "]52;c;"+base64.StdEncoding.EncodeToString([]byte("hello")))
}

func TestWriteText_FallsBackToNative(t *testing.T) {
	var got string
	w := fakeWriter(Auto, nil, errors.New("no tty"), func(s string) error { got = s; return nil })

	require.NoError(t, w.WriteText("fallback"))
	assert.Equal(t, "fallback", got)
}

func TestWriteText_AllFail(t *testing.T) {
	w := fakeWriter(Auto, nil, errors.New("no tty"), func(string) error { return errors.New("xclip missing") })

	err := w.WriteText("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tty")
	assert.Contains(t, err.Error(), "xclip missing")
}

func TestWriteText_NativeOnlySkipsTTY(t *testing.T) {
	var tty bytes.Buffer
	w := fakeWriter(NativeOnly, &tty, nil, func(string) error { return nil })
	require.NoError(t, w.WriteText("x"))
	assert.Zero(t, tty.Len())
}

func TestWriteText_NoNativeAvailable(t *testing.T) {
	w := fakeWriter(NativeOnly, nil, nil, nil)
	assert.Error(t, w.WriteText("x"))
}

func TestWriteText_Tmux(t *testing.T) {
	var tty bytes.Buffer
	w := fakeWriter(OSC52Only, &tty, nil, nil)
	w.tmux = true
	require.NoError(t, w.WriteText("x"))
	assert.True(t, bytes.HasPrefix(tty.Bytes(), []byte("\x1bPtmux;")))
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, OSC52Only, ParseMode("osc52"))
	assert.Equal(t, NativeOnly, ParseMode("native"))
	assert.Equal(t, Auto, ParseMode(""))
	assert.Equal(t, Auto, ParseMode("bogus"))
}
