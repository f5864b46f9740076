package main

import (
	"flag"
	"io"
	"strconv"
	"strings"
)

type options struct {
	configPath string
	inputPath  string
	outDir     string
	delimiter  string
	dryRun     bool
	debug      bool

	identifier   string
	splitPattern string
	recordCount  *int
	setCount     *int
	weightBudget *int
	maxRecords   *int

	excludeFile     string
	excludePatterns []string
	excludeRecords  []string

	kafkaBroker string
	kafkaTopic  string
	workers     int
	metricsFile string
}

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var (
		opts         options
		patterns     stringList
		excluded     stringList
		recordCount  int
		setCount     int
		weightBudget int
		maxRecords   int
	)

	fs := flag.NewFlagSet("splitter", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.inputPath, "input", "-", "records file, - for stdin")
	fs.StringVar(&opts.outDir, "out", "", "output directory (overrides output.dir)")
	fs.StringVar(&opts.delimiter, "delimiter", "", `record delimiter in output files, Go escapes allowed (default "\n")`)
	fs.BoolVar(&opts.dryRun, "dry-run", false, "log sets without writing them")
	fs.BoolVar(&opts.debug, "debug", false, "development logger with debug level")

	fs.StringVar(&opts.identifier, "identifier", "", "parent group identifier (default \"set\")")
	fs.StringVar(&opts.splitPattern, "split-pattern", "", "capturing pattern for sub-groups")
	fs.IntVar(&recordCount, "record-count", 0, "records per set")
	fs.IntVar(&setCount, "set-count", 0, "number of sets")
	fs.IntVar(&weightBudget, "weight-budget", 0, "maximum weight per set")
	fs.IntVar(&maxRecords, "max-records", 0, "maximum records per set with -weight-budget")

	fs.StringVar(&opts.excludeFile, "exclude-file", "", "file with records to exclude")
	fs.Var(&patterns, "exclude-pattern", "pattern of records to exclude (repeatable)")
	fs.Var(&excluded, "exclude", "record to exclude (repeatable)")

	fs.StringVar(&opts.kafkaBroker, "kafka-broker", "", "publish sets to this Kafka broker")
	fs.StringVar(&opts.kafkaTopic, "kafka-topic", "", "Kafka topic for published sets")
	fs.IntVar(&opts.workers, "workers", defaultWorkerCount, "concurrent set writers")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "record-count":
			opts.recordCount = &recordCount
		case "set-count":
			opts.setCount = &setCount
		case "weight-budget":
			opts.weightBudget = &weightBudget
		case "max-records":
			opts.maxRecords = &maxRecords
		}
	})

	opts.excludePatterns = patterns
	opts.excludeRecords = excluded
	opts.delimiter = unescape(opts.delimiter)

	return opts, nil
}

// unescape раскрывает escape-последовательности вида \n и \t.
func unescape(s string) string {
	if s == "" {
		return s
	}
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}
