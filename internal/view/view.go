// Package view renders validation and run outcomes for the terminal.
package view

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/ctyconv"
	"github.com/vk/taskgrid/internal/executor"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	okLabel    = color.New(color.FgGreen, color.Bold)
	warnLabel  = color.New(color.FgYellow, color.Bold)
	dimText    = color.New(color.Faint)
)

// Renderer writes human-readable reports to a single output stream.
type Renderer struct {
	w io.Writer
}

// New creates a renderer. Pass os.Stdout for terminal use.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// RenderErrors prints every definition error on its own line.
func (r *Renderer) RenderErrors(file string, errs []error) {
	for _, err := range errs {
		fmt.Fprintln(r.w, errorLabel.Sprint("Error!"), file+":", err)
	}
}

// RenderValid prints the success line of a validate-only invocation.
func (r *Renderer) RenderValid(file string) {
	fmt.Fprintln(r.w, okLabel.Sprint("Valid!"), file, "has no errors.")
}

// RenderResult prints per-step outcomes in execution order followed by
// the overall run status.
func (r *Renderer) RenderResult(res *executor.Result) {
	for _, name := range res.Order {
		sr := res.Steps[name]
		switch sr.Status {
		case executor.StepSucceeded:
			fmt.Fprintln(r.w, okLabel.Sprint("  ok"), name, dimText.Sprint(renderValue(sr)))
		case executor.StepSkipped:
			fmt.Fprintln(r.w, warnLabel.Sprint("skip"), name, dimText.Sprintf("(%v)", sr.Err))
		case executor.StepFailed:
			fmt.Fprintln(r.w, errorLabel.Sprint("fail"), name+":", sr.Err)
		}
	}

	switch res.Status {
	case executor.StatusCompleted:
		fmt.Fprintln(r.w, okLabel.Sprint("Completed"), dimText.Sprint("run", res.RunID))
	case executor.StatusPartiallyFailed:
		fmt.Fprintln(r.w, warnLabel.Sprint("Partially failed"), dimText.Sprint("run", res.RunID))
	case executor.StatusFailed:
		fmt.Fprintln(r.w, errorLabel.Sprint("Failed"), dimText.Sprint("run", res.RunID))
	}
}

// renderValue gives a compact one-line preview of a step's result.
func renderValue(sr *executor.StepResult) string {
	if len(sr.Outputs) > 0 {
		s := ""
		for i, k := range sortedOutputNames(sr) {
			if i > 0 {
				s += " "
			}
			s += fmt.Sprintf("%s=%s", k, preview(sr.Outputs[k]))
		}
		return s
	}
	return preview(sr.Value)
}

func sortedOutputNames(sr *executor.StepResult) []string {
	names := make([]string, 0, len(sr.Outputs))
	for k := range sr.Outputs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

const previewLimit = 60

func preview(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() {
		return "null"
	}
	if name, ok := ctyconv.OpaqueName(v.Type()); ok {
		return "<" + name + ">"
	}
	s := fmt.Sprintf("%v", ctyconv.FromCty(v))
	if len(s) > previewLimit {
		s = s[:previewLimit] + "…"
	}
	return s
}
