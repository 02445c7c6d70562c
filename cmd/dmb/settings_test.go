// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

func settingsFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("dmb", pflag.ContinueOnError)
	addPersistentFlags(flags)
	if err := flags.Parse(args); err != nil {
		t.Fatal(err)
	}
	return flags
}

// Not parallel: the cases set DMB_* variables.
func TestLoadUISettings(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		want    uiSettings
		wantErr bool
	}{
		{name: "defaults", want: uiSettings{LogFormat: logFormatText}},
		{name: "debug flag", args: []string{"--debug"}, want: uiSettings{Debug: true, LogFormat: logFormatText}},
		{name: "debug variable", env: map[string]string{"DMB_DEBUG": "true"}, want: uiSettings{Debug: true, LogFormat: logFormatText}},
		{name: "flag wins over variable", args: []string{"--debug=false"}, env: map[string]string{"DMB_DEBUG": "true"}, want: uiSettings{LogFormat: logFormatText}},
		{name: "json logs", env: map[string]string{"DMB_LOG_FORMAT": "JSON"}, want: uiSettings{LogFormat: logFormatJSON}},
		{name: "unknown format", env: map[string]string{"DMB_LOG_FORMAT": "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DMB_DEBUG", "")
			t.Setenv("DMB_LOG_FORMAT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := loadUISettings(settingsFlags(t, tt.args...))
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "DMB_LOG_FORMAT") {
					t.Errorf("loadUISettings() error = %v, want a DMB_LOG_FORMAT error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadUISettings() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("loadUISettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUISettingsApply(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf)
	uiSettings{Debug: true, LogFormat: logFormatJSON}.apply(logger)

	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
	logger.Debug("building", "mod", "alpha")
	if out := buf.String(); !strings.HasPrefix(out, "{") || !strings.Contains(out, `"mod":"alpha"`) {
		t.Errorf("not a JSON log line: %q", out)
	}
}
