// Command datasetcheck loads replay datasets the same way the server does
// and reports whether each one would stream.
//
//	datasetcheck -dir eeg-score
//	datasetcheck -dir eeg-score -path eyes-closed/crimson-hawk-calm.json
package main

import (
	"flag"
	"log/slog"
	"os"

	"eeg-replay/internal/platform/config"
	"eeg-replay/internal/platform/logger"
	"eeg-replay/internal/replay"
)

func main() {
	_ = config.Load()

	dir := flag.String("dir", config.GetEnv("DATA_DIR", "eeg-score"), "dataset root directory")
	one := flag.String("path", "", "check a single dataset (root-relative path)")
	format := flag.String("log-format", "text", "log format: text or json")
	flag.Parse()

	log := logger.New(config.GetEnv("LOG_LEVEL", "info"), *format)
	os.Exit(run(replay.NewDirStore(*dir), *one, log))
}

// run returns the process exit code: 0 when every dataset loads, 1 otherwise.
func run(store replay.Store, one string, log *slog.Logger) int {
	loader := replay.NewLoader(store, log)

	var paths []string
	if one != "" {
		paths = []string{one}
	} else {
		entries, err := replay.NewCatalog(store, log).List()
		if err != nil {
			log.Error("cannot list datasets", slog.String("error", err.Error()))
			return 1
		}
		for _, e := range entries {
			for _, f := range e.Files {
				paths = append(paths, f.Path)
			}
		}
	}

	failed := 0
	for _, p := range paths {
		ds, err := loader.Load(p)
		if err != nil {
			failed++
			log.Error("dataset invalid", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		lo, hi := ds.ValueRange()
		log.Info("dataset ok",
			slog.String("path", ds.Path),
			slog.String("name", ds.Name),
			slog.Int("samples", ds.Len()),
			slog.Duration("duration", ds.Duration()),
			slog.Float64("min_value", lo),
			slog.Float64("max_value", hi))
	}

	log.Info("check finished", slog.Int("checked", len(paths)), slog.Int("failed", failed))
	if failed > 0 {
		return 1
	}
	return 0
}
