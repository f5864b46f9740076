package main

import (
	"context"
	"fmt"
	"io"

	"record-splitter/internal/config"
	"record-splitter/internal/dispatcher"
	"record-splitter/internal/exclude"
	"record-splitter/internal/group"
	"record-splitter/internal/partitioner"
	"record-splitter/internal/publisher"
	"record-splitter/internal/sender"
	"record-splitter/internal/source"
	"record-splitter/internal/split_metrics"
	"record-splitter/internal/splitter"
	"record-splitter/internal/writer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sinkFn = func(ctx context.Context, set partitioner.Set) error

func run(ctx context.Context, opts options, stdin io.Reader) error {
	runID := uuid.NewString()
	undo := zap.ReplaceGlobals(zap.L().With(zap.String("run_id", runID)))
	defer undo()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	b := group.NewBuilder()

	// Явный список верхнего уровня заменяет входной поток,
	// но проходит через тот же фильтр исключений.
	records, fromConfig, err := b.TakeInput(&cfg.Group)
	if err != nil {
		return err
	}
	if !fromConfig {
		records, err = readInput(opts.inputPath, stdin)
		if err != nil {
			return err
		}
	}

	kept, excluded, err := exclude.Apply(records, cfg.Exclude)
	if err != nil {
		return err
	}
	if len(excluded) > 0 {
		zap.L().Info("records excluded", zap.Int("count", len(excluded)))
	}

	metrics, err := split_metrics.NewMetrics()
	if err != nil {
		return err
	}
	metrics.ObserveInput(len(records), len(excluded))

	res, err := splitter.NewSplitter().SetBuilder(b).SetObserver(metrics).Split(cfg.Group, kept)
	if err != nil {
		return err
	}

	if opts.dryRun {
		for _, s := range res.Sets {
			zap.L().Info("set",
				zap.String("id", s.ID),
				zap.Int("records", len(s.Records)),
				zap.Float64("weight", s.Weight),
			)
		}
	} else if err := publish(ctx, opts, cfg.Output, runID, res, metrics); err != nil {
		return err
	}

	if opts.metricsFile != "" {
		if err := metrics.WriteFile(opts.metricsFile); err != nil {
			return err
		}
	}

	return nil
}

// loadConfig читает конфигурационный файл и применяет поверх него флаги.
func loadConfig(opts options) (config.File, error) {
	cfg := config.Defaults()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}

	g := &cfg.Group
	if opts.identifier != "" {
		g.Identifier = opts.identifier
	}
	if opts.splitPattern != "" {
		g.SplitPattern = opts.splitPattern
	}
	if opts.recordCount != nil || opts.setCount != nil || opts.weightBudget != nil {
		g.RecordCount, g.SetCount, g.WeightBudget = opts.recordCount, opts.setCount, opts.weightBudget
	}
	if opts.maxRecords != nil {
		g.MaxRecords = opts.maxRecords
	}

	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	if opts.delimiter != "" {
		cfg.Output.Delimiter = opts.delimiter
	}

	if opts.excludeFile != "" {
		cfg.Exclude.File = opts.excludeFile
	}
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, opts.excludePatterns...)
	cfg.Exclude.Records = append(cfg.Exclude.Records, opts.excludeRecords...)

	return cfg, nil
}

func readInput(path string, stdin io.Reader) ([]string, error) {
	if path == "" || path == "-" {
		return source.Read(stdin)
	}
	return source.ReadFile(path)
}

// publish записывает наборы в файлы и, если задан брокер, в Kafka.
// Каждая запись выполняется через dispatcher с повторами.
func publish(ctx context.Context, opts options, out config.Output, runID string, res *partitioner.Result, metrics *split_metrics.Metrics) error {
	if err := writer.CheckNames(res.Sets); err != nil {
		return err
	}

	fs := writer.NewFS(out.Dir, out.Delimiter)
	sinks := []sinkFn{fs.Write}

	if opts.kafkaBroker != "" || opts.kafkaTopic != "" {
		ks, err := sender.NewKafkaSender(sender.KafkaConfig{
			Broker: opts.kafkaBroker,
			Topic:  opts.kafkaTopic,
			RunID:  runID,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := ks.Close(); err != nil {
				zap.L().Error(err.Error())
			}
		}()
		sinks = append(sinks, ks.Send)
	}

	disp := dispatcher.NewDispatcher()

	writeFn := func(ctx context.Context, set partitioner.Set) error {
		for _, sink := range sinks {
			err := disp.Write(ctx, func(ctx context.Context) error {
				return sink(ctx, set)
			})
			if err != nil {
				metrics.ObservePublishFailure()
				return fmt.Errorf("set %q: %w", set.ID, err)
			}
		}
		return nil
	}

	pub := publisher.NewPublisher[partitioner.Set](ctx, writeFn, opts.workers, publisherBufferSize)
	if err := pub.PublishAll(ctx, res.Sets); err != nil {
		return fmt.Errorf("publish sets: %w", err)
	}

	zap.L().Info("sets written",
		zap.Int("sets", res.Len()),
		zap.String("dir", out.Dir),
		zap.Bool("kafka", len(sinks) > 1),
	)

	return nil
}
