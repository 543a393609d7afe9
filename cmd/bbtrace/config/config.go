package config

import (
	"encoding/json"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/facebookgo/stackerr"
	"github.com/rcrowley/go-metrics"

	"github.com/skipor/bbtrace"
	"github.com/skipor/bbtrace/cache"
	"github.com/skipor/bbtrace/internal/util"
	"github.com/skipor/bbtrace/log"
)

type Config struct {
	// Trace is the path of the recorded trace. Empty means stdin.
	Trace string `json:"trace,omitempty"`
	// Output takes stderr, stdout, or a filepath.
	Output         string `json:"output,omitempty"`
	LogDestination string `json:"log-destination,omitempty"` // Stdout, stderr, or filepath.
	LogLevel       string `json:"log-level,omitempty"`
	// CacheSize is the block cache capacity in entries.
	CacheSize  int    `json:"cache-size,omitempty"`
	Discipline string `json:"discipline,omitempty"` // exclusive or partitioned
	Metrics    bool   `json:"metrics,omitempty"`
}

func Default() *Config {
	return &Config{
		Output:         "stderr",
		LogDestination: "stderr",
		LogLevel:       "info",
		CacheSize:      50,
		Discipline:     string(bbtrace.DisciplineExclusive),
	}
}

// Parsed holds opened sinks and typed values ready to build a session.
type Parsed struct {
	Trace          string
	Output         io.Writer
	LogDestination io.Writer
	LogLevel       log.Level
	Session        bbtrace.Config
}

func Parse(conf *Config) (parsed Parsed, err error) {
	parsed.Trace = conf.Trace
	parsed.Output, err = openSink(conf.Output, os.O_TRUNC)
	if err != nil {
		err = stackerr.Newf("Output open error: %v", err)
		return
	}
	parsed.LogDestination, err = openSink(conf.LogDestination, os.O_APPEND)
	if err != nil {
		err = stackerr.Newf("Log destination open error: %v", err)
		return
	}
	parsed.LogLevel, err = log.LevelFromString(conf.LogLevel)
	if err != nil {
		err = stackerr.Newf("Log level parse error: %v", err)
		return
	}
	parsed.Session.Cache = cache.Config{Capacity: conf.CacheSize}
	parsed.Session.Discipline = bbtrace.Discipline(conf.Discipline)
	if conf.Metrics {
		parsed.Session.Metrics = metrics.NewRegistry()
	}
	return
}

// Merge overwrites def values with non zero override values.
func Merge(def, override *Config) {
	defVal := reflect.ValueOf(def).Elem()
	overrideVal := reflect.ValueOf(override).Elem()
	for i, end := 0, defVal.NumField(); i < end; i++ {
		overrideVal := overrideVal.Field(i)
		if !util.IsZeroVal(overrideVal) {
			defVal.Field(i).Set(overrideVal)
		}
	}
}

func Unmarshal(data []byte, conf *Config) error {
	return stackerr.Wrap(json.Unmarshal(data, conf))
}

func openSink(dest string, flag int) (w io.Writer, err error) {
	switch strings.ToLower(dest) {
	case "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		w, err = os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|flag, 0644)
	}
	return
}
