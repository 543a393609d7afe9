package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/skipor/bbtrace"
	"github.com/skipor/bbtrace/cmd/bbtrace/config"
	"github.com/skipor/bbtrace/internal/tag"
	"github.com/skipor/bbtrace/log"
	"github.com/skipor/bbtrace/trace"
)

const usage = `
Replays a recorded basic-block trace through a bounded FIFO block cache
and reports total blocks, cache hits, cache misses and final occupancy.
Config values merge rules:
1) config file value overrides default
2) command line value overrides any
Options:
`

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s", usage)
		flag.PrintDefaults()
	}
}

func main() {
	conf, input := parse()
	l := log.NewLogger(conf.LogLevel, conf.LogDestination)
	s, err := bbtrace.NewSession(l, conf.Session)
	if err != nil {
		l.Fatal("Session init error: ", err)
	}
	reporter := &bbtrace.Reporter{Out: conf.Output, Metrics: conf.Session.Metrics}
	s.Hooks().RegisterExit(reporter.ExitHook(s.Stats()))
	if tag.Debug {
		l.Warn("Using debug build. It has more runtime checks and large perfomance overhead.")
	}

	in := os.Stdin
	if conf.Trace != "" {
		f, err := os.Open(conf.Trace)
		if err != nil {
			l.Fatal("Trace open error: ", err)
		}
		defer f.Close()
		in = f
	}

	banner(input)
	if err := s.Run(trace.NewReader(in)); err != nil {
		l.Fatal("Replay error: ", err)
	}
}

func banner(input *config.Config) {
	fmt.Fprintln(os.Stderr, "===============================================")
	fmt.Fprintln(os.Stderr, "This trace is analyzed by bbtrace")
	switch input.Output {
	case "stderr", "stdout", "":
	default:
		fmt.Fprintf(os.Stderr, "See file %s for analysis results\n", input.Output)
	}
	fmt.Fprintln(os.Stderr, "===============================================")
}

// parse reads command flags and the config file if any, and returns the
// merged parsed config together with the raw input values.
// Config values merge rules:
// 1) config file value overrides default
// 2) command line value overrides any
func parse() (config.Parsed, *config.Config) {
	l := log.NewLogger(log.DebugLevel, os.Stderr)
	flg := parseFlags()
	conf := config.Default()
	if flg.ConfigPath != "" {
		data, err := ioutil.ReadFile(flg.ConfigPath)
		if err != nil {
			l.Fatal("Config file read error: ", err)
		}
		if err := config.Unmarshal(data, conf); err != nil {
			l.Fatal("Config parse error: ", err)
		}
	}
	config.Merge(conf, &flg.Config)
	parsed, err := config.Parse(conf)
	if err != nil {
		l.Fatal("Config error: ", err)
	}
	return parsed, conf
}

type Flags struct {
	ConfigPath string
	config.Config
}

func parseFlags() Flags {
	var f Flags
	flag.StringVar(&f.ConfigPath, "config", "", "path to json config")

	def := config.Default()
	usage := func(usage string, defVal interface{}) string {
		if _, ok := defVal.(string); ok {
			return usage + fmt.Sprintf(" (default %q)", defVal)
		}
		return usage + fmt.Sprintf(" (default %v)", defVal)
	}
	flag.StringVar(&f.Trace, "trace", "", "trace file to replay; empty means stdin")
	flag.StringVar(&f.Output, "o", "", usage("results destination: stderr, stdout or file path", def.Output))
	flag.IntVar(&f.CacheSize, "n", 0, usage("size of block cache", def.CacheSize))
	flag.StringVar(&f.Discipline, "discipline", "", usage("concurrency discipline: exclusive or partitioned", def.Discipline))
	flag.BoolVar(&f.Metrics, "metrics", false, "dump go-metrics registry after the report")
	flag.StringVar(&f.LogDestination, "log-destination", "", usage("log destination: stderr, stdout or file path", def.LogDestination))
	flag.StringVar(&f.LogLevel, "log-level", "", usage("log level: debug, info, warn, error, fatal", def.LogLevel))
	flag.Parse()
	return f
}
