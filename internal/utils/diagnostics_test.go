package utils

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/classinfo/internal/errors"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level)
	d.SetOutput(&out, &errOut)
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   DiagnosticLevel
		wantOut []string
		wantErr []string
	}{
		{"silent", DiagnosticSilent, nil, nil},
		{"error", DiagnosticError, nil, []string{"[ERROR] e"}},
		{"info", DiagnosticInfo, []string{"[INFO] i", "[SUCCESS] s"}, []string{"[ERROR] e", "[WARN] w"}},
		{"debug", DiagnosticDebug, []string{"[INFO] i", "[VERBOSE] v", "[DEBUG] d"}, []string{"[WARN] w"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, out, errOut := newTestDiagnostics(tt.level)
			d.Error("e")
			d.Warn("w")
			d.Info("i")
			d.Success("s")
			d.Verbose("v")
			d.Debug("d")

			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			for _, want := range tt.wantErr {
				assert.Contains(t, errOut.String(), want)
			}
			if tt.level == DiagnosticSilent {
				assert.Empty(t, out.String())
				assert.Empty(t, errOut.String())
			}
			if tt.level < DiagnosticVerbose {
				assert.NotContains(t, out.String(), "[VERBOSE]")
			}
		})
	}
}

func TestDiagnosticSystem_Indent(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.Indent()
	d.Info("nested")
	d.Unindent()
	d.Unindent()
	d.Info("top")

	assert.Equal(t, "  [INFO] nested\n[INFO] top\n", out.String())
}

func TestDiagnosticSystem_Summary(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.Summary("Done", map[string]interface{}{"Methods": 3, "Classes": 1})

	assert.Equal(t, "\nDone\n   Classes: 1\n   Methods: 3\n", out.String())
}

func TestDiagnosticSystem_ReportError(t *testing.T) {
	d, _, errOut := newTestDiagnostics(DiagnosticVerbose)

	multi := errors.NewMultipleErrors()
	multi.Add(errors.ConfigurationError("scan.workers", "must be positive"))
	d.ReportError(multi)
	d.ReportError(fmt.Errorf("plain failure"))

	got := errOut.String()
	assert.Contains(t, got, "[ERROR] ConfigurationError: configuration error in 'scan.workers'")
	assert.Contains(t, got, "    config_type: scan.workers")
	assert.Contains(t, got, "[ERROR] plain failure")

	d.ReportError(nil)
	assert.Equal(t, got, errOut.String())
}

func TestNewQuietDiagnostics(t *testing.T) {
	d := NewQuietDiagnostics()
	assert.Equal(t, DiagnosticError, d.level)
}
