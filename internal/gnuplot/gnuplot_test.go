package gnuplot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
)

const testTmpl = `{{.SetTerm}}
{{.SetOutput}}
set title {{quote .Params.Title}}
plot '{{.DataPath}}' using 1:2 with lines
`

func testConfig(bin string) config.PlotConfig {
	return config.PlotConfig{Gnuplot: bin, Terminal: "pngcairo", Width: 640, Height: 480}
}

// fakeGnuplot writes a shell script that copies its input to copyTo and
// exits with code.
func fakeGnuplot(t *testing.T, copyTo string, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "gnuplot")
	script := fmt.Sprintf("#!/bin/sh\ncp \"$1\" %q\necho 'line 3: undefined variable' >&2\nexit %d\n", copyTo, code)
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "'Italy'", Quote("Italy"))
	assert.Equal(t, "'Cote d''Ivoire'", Quote("Cote d'Ivoire"))
}

func TestScript(t *testing.T) {
	r := New(testConfig("gnuplot"), nil)

	out, err := r.Script(Job{
		Name:     "line",
		Template: testTmpl,
		Output:   "/img/world_cases.png",
		Params:   struct{ Title string }{"World"},
	}, "/tmp/data")
	require.NoError(t, err)

	assert.Equal(t, "set term pngcairo size 640,480\n"+
		"set output '/img/world_cases.png'\n"+
		"set title 'World'\n"+
		"plot '/tmp/data' using 1:2 with lines\n", string(out))
}

func TestScriptErrors(t *testing.T) {
	r := New(testConfig("gnuplot"), nil)

	_, err := r.Script(Job{Name: "broken", Template: "{{.SetTerm"}, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeRender, apperrors.TypeOf(err))

	_, err = r.Script(Job{Name: "params", Template: "{{.Params.Missing}}", Params: struct{}{}}, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeRender, apperrors.TypeOf(err))
}

func TestRender(t *testing.T) {
	copyTo := filepath.Join(t.TempDir(), "script.gnuplot")
	r := New(testConfig(fakeGnuplot(t, copyTo, 0)), nil)
	output := filepath.Join(t.TempDir(), "img", "chart.png")

	err := r.Render(context.Background(), Job{
		Name:     "line",
		Template: testTmpl,
		Output:   output,
		Params:   struct{ Title string }{"Italy"},
		Data: func(w io.Writer) error {
			_, err := io.WriteString(w, "2020-01-22\t50\n")
			return err
		},
	})
	require.NoError(t, err)
	assert.DirExists(t, filepath.Dir(output))

	script, err := os.ReadFile(copyTo)
	require.NoError(t, err)
	assert.Contains(t, string(script), "set output "+Quote(output))
	assert.Contains(t, string(script), "covidlab.data.")
}

func TestRenderFailures(t *testing.T) {
	t.Run("gnuplot exit status", func(t *testing.T) {
		copyTo := filepath.Join(t.TempDir(), "script.gnuplot")
		r := New(testConfig(fakeGnuplot(t, copyTo, 1)), nil)

		err := r.Render(context.Background(), Job{
			Name:     "line",
			Template: testTmpl,
			Output:   filepath.Join(t.TempDir(), "chart.png"),
			Params:   struct{ Title string }{"Italy"},
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeRender, apperrors.TypeOf(err))
		assert.Contains(t, err.Error(), "undefined variable")
	})

	t.Run("missing binary", func(t *testing.T) {
		r := New(testConfig(filepath.Join(t.TempDir(), "no-gnuplot")), nil)
		err := r.Render(context.Background(), Job{
			Name:     "line",
			Template: testTmpl,
			Output:   filepath.Join(t.TempDir(), "chart.png"),
			Params:   struct{ Title string }{"Italy"},
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeRender, apperrors.TypeOf(err))
	})

	t.Run("data writer error", func(t *testing.T) {
		r := New(testConfig("gnuplot"), nil)
		err := r.Render(context.Background(), Job{
			Name:     "line",
			Template: testTmpl,
			Output:   filepath.Join(t.TempDir(), "chart.png"),
			Data:     func(io.Writer) error { return assert.AnError },
		})
		require.ErrorIs(t, err, assert.AnError)
	})
}
