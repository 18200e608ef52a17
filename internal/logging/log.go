/*
 * Copyright 2026 Hewlett Packard Enterprise Development LP
 * Other additional copyright holders may be indicated within.
 *
 * The entirety of this work is licensed under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 *
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Verbosity levels selected by repeating -v on the command line.
const (
	Disabled = iota
	Debug
	Trace
)

// New returns a logger writing text lines to w. The level comes from the
// LOG_LEVEL environment variable unless verbosity asks for more.
func New(w io.Writer, verbosity int) *log.Logger {
	logger := log.New()
	logger.SetOutput(w)
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:    false,
		DisableTimestamp: true,
	})
	logger.SetReportCaller(false)
	logger.SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))

	switch {
	case verbosity >= Trace:
		logger.SetLevel(log.TraceLevel)
	case verbosity == Debug && logger.GetLevel() < log.DebugLevel:
		logger.SetLevel(log.DebugLevel)
	}

	return logger
}

// ParseLevel maps a LOG_LEVEL value to a logrus level, defaulting to Info.
func ParseLevel(level string) log.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return log.TraceLevel
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	case "FATAL":
		return log.FatalLevel
	case "PANIC":
		return log.PanicLevel
	default:
		return log.InfoLevel
	}
}

// Component returns an entry tagged with the component name.
func Component(logger *log.Logger, name string) *log.Entry {
	return logger.WithField("component", name)
}
