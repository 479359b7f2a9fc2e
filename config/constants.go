package config

import "github.com/brettbedarf/pathops/internal/util"

// Log verbosity as given on a command line or in a config file, from least
// to most verbose. Values outside the range are clamped.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// verbosityLevels maps verbosity-1 to the logger level.
var verbosityLevels = [...]util.LogLevel{
	util.ErrorLevel,
	util.WarnLevel,
	util.InfoLevel,
	util.DebugLevel,
	util.TraceLevel,
}

// LogLevelFromVerbosity converts a 1 (error) to 5 (trace) verbosity into a
// logger level.
func LogLevelFromVerbosity(verbose int) util.LogLevel {
	verbose = max(ErrorVerbose, min(TraceVerbose, verbose))
	return verbosityLevels[verbose-1]
}
