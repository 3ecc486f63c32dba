// Package gnuplot renders charts by executing Go templates into .gnuplot
// scripts and passing them to the gnuplot binary.
package gnuplot

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"covidlab/internal/config"
	apperrors "covidlab/internal/errors"
)

// Frame carries the script lines every template needs.
// Templates reference them as {{.SetTerm}}, {{.SetOutput}} and {{.DataPath}}.
type Frame struct {
	SetTerm   string
	SetOutput string
	DataPath  string
}

// Job describes one chart.
type Job struct {
	Name     string                  // template name, used in errors
	Template string                  // text/template source
	Output   string                  // image path
	Data     func(w io.Writer) error // writes the data file; nil for none
	Params   any                     // chart specific values, {{.Params.X}}
}

// view is the value a template is executed with
type view struct {
	Frame
	Params any
}

// Renderer runs gnuplot with a fixed terminal
type Renderer struct {
	bin    string
	term   string
	width  int
	height int
	logger *slog.Logger
}

// New returns a Renderer for cfg. A nil logger discards output.
func New(cfg config.PlotConfig, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{
		bin:    cfg.Gnuplot,
		term:   cfg.Terminal,
		width:  cfg.Width,
		height: cfg.Height,
		logger: logger,
	}
}

// Quote returns s as a single-quoted gnuplot string.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var funcs = template.FuncMap{
	"quote": Quote,
	"inc":   func(i int) int { return i + 1 },
}

// Script executes the job's template against dataPath.
func (r *Renderer) Script(job Job, dataPath string) ([]byte, error) {
	tmpl, err := template.New(job.Name).Funcs(funcs).Parse(job.Template)
	if err != nil {
		return nil, apperrors.NewRenderError(fmt.Sprintf("parse %s template", job.Name), err)
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, view{
		Frame: Frame{
			SetTerm:   fmt.Sprintf("set term %s size %d,%d", r.term, r.width, r.height),
			SetOutput: "set output " + Quote(job.Output),
			DataPath:  dataPath,
		},
		Params: job.Params,
	})
	if err != nil {
		return nil, apperrors.NewRenderError(fmt.Sprintf("execute %s template", job.Name), err)
	}
	return buf.Bytes(), nil
}

// Render writes the job's data and script to temp files and runs gnuplot.
// The image directory is created if needed.
func (r *Renderer) Render(ctx context.Context, job Job) error {
	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return apperrors.NewRenderError("create image directory", err)
	}

	var dataPath string
	if job.Data != nil {
		df, err := os.CreateTemp("", "covidlab.data.")
		if err != nil {
			return apperrors.NewRenderError("create data file", err)
		}
		defer os.Remove(df.Name())

		w := bufio.NewWriter(df)
		werr := job.Data(w)
		if werr == nil {
			werr = w.Flush()
		}
		cerr := df.Close()
		if werr != nil {
			return apperrors.NewRenderError(fmt.Sprintf("write %s data", job.Name), werr)
		}
		if cerr != nil {
			return apperrors.NewRenderError(fmt.Sprintf("write %s data", job.Name), cerr)
		}
		dataPath = df.Name()
	}

	script, err := r.Script(job, dataPath)
	if err != nil {
		return err
	}

	gf, err := os.CreateTemp("", "covidlab.gnuplot.")
	if err != nil {
		return apperrors.NewRenderError("create script file", err)
	}
	defer os.Remove(gf.Name())
	_, werr := gf.Write(script)
	cerr := gf.Close()
	if werr != nil {
		return apperrors.NewRenderError("write script file", werr)
	}
	if cerr != nil {
		return apperrors.NewRenderError("write script file", cerr)
	}

	r.logger.DebugContext(ctx, "running gnuplot",
		slog.String("chart", job.Name),
		slog.String("output", job.Output))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.bin, gf.Name())
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() != 0 {
			err = fmt.Errorf("%w: %q", err, strings.TrimSpace(stderr.String()))
		}
		return apperrors.NewRenderError(fmt.Sprintf("gnuplot %s", job.Name), err)
	}
	return nil
}
