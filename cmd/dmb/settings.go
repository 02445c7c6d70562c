// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix = "DMB"

	settingDebug     = "debug"
	settingLogFormat = "log_format"

	logFormatText   = "text"
	logFormatJSON   = "json"
	logFormatLogfmt = "logfmt"
)

// uiSettings shape dmb's own output. Unlike .dmbrc they are never saved:
// they come from --debug or DMB_DEBUG and DMB_LOG_FORMAT.
type uiSettings struct {
	Debug     bool
	LogFormat string
}

// loadUISettings reads the settings from flags and the environment. A flag
// given on the command line wins over its variable.
func loadUISettings(flags *pflag.FlagSet) (uiSettings, error) {
	v := viper.New()
	v.SetDefault(settingDebug, false)
	v.SetDefault(settingLogFormat, logFormatText)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if f := flags.Lookup(flagDebug); f != nil {
		if err := v.BindPFlag(settingDebug, f); err != nil {
			return uiSettings{}, err
		}
	}

	s := uiSettings{
		Debug:     v.GetBool(settingDebug),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString(settingLogFormat))),
	}
	switch s.LogFormat {
	case logFormatText, logFormatJSON, logFormatLogfmt:
	default:
		return s, fmt.Errorf("unsupported log format %q, %s_LOG_FORMAT must be %s, %s or %s",
			s.LogFormat, envPrefix, logFormatText, logFormatJSON, logFormatLogfmt)
	}
	return s, nil
}

func (s uiSettings) apply(logger *log.Logger) {
	if s.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	switch s.LogFormat {
	case logFormatJSON:
		logger.SetFormatter(log.JSONFormatter)
	case logFormatLogfmt:
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}
}
