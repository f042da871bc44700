package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/parcelfs/parcel/pkg/algorithm"
	"github.com/parcelfs/parcel/pkg/control"
	"github.com/parcelfs/parcel/pkg/logging"
	"github.com/parcelfs/parcel/pkg/perf"
	"github.com/parcelfs/parcel/pkg/transfer"
)

func main() {
	var (
		src         = flag.String("src", "", "Source directory to copy")
		dst         = flag.String("dst", "", "Destination directory")
		performance = flag.String("performance", "average", "Performance preference: fast|average|slow")
		noSplit     = flag.Bool("no-split", false, "Disable splitting large files into parts")
		noCompress  = flag.Bool("no-compress", false, "Disable compression and copy file contents as-is")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		logFormat   = flag.String("log-format", "text", "Log format: text|json")
		serve       = flag.String("serve", "", "Expose a local control surface on this address (e.g. :8787) instead of driving the transfer directly")
	)
	flag.Parse()

	if *src == "" || *dst == "" {
		fmt.Fprintln(os.Stderr, "usage: parcel -src <dir> -dst <dir> [-performance fast|average|slow] [-no-split] [-no-compress] [-serve :8787]")
		os.Exit(1)
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := logging.ConfigureFromSettings(level, *logFormat, "console", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging configuration error: %v\n", err)
		os.Exit(1)
	}

	perfLevel, err := perf.ParseLevel(*performance)
	if err != nil {
		logger.Errorf("invalid -performance value: %v", err)
		os.Exit(1)
	}

	settings := perf.New()
	settings.Performance = perfLevel
	settings.SplitEnabled = !*noSplit
	if *noCompress {
		none := algorithm.None.String()
		settings.CompressionOverride = &none
	}

	manager := transfer.New(*src, *dst, settings, logger)

	if *serve != "" {
		srv := control.NewServer(manager, logger)
		logger.Infof("control surface listening on %s", *serve)
		if err := http.ListenAndServe(*serve, srv.Router()); err != nil {
			logger.Errorf("control surface exited: %v", err)
			os.Exit(1)
		}
		return
	}

	runDirect(manager, logger)
}

func runDirect(manager *transfer.Manager, logger *logging.Logger) {
	go func() {
		for ev := range manager.Events() {
			switch ev.Kind {
			case "progress":
				logger.Infof("progress: %d%%", ev.Percent)
			case "worker-done":
				logger.Debugf("worker %d done", ev.WorkerID)
			}
		}
	}()

	manager.Start()
	for !manager.IsComplete() {
		time.Sleep(100 * time.Millisecond)
	}

	for {
		n, ok := manager.Notifications().Pop()
		if !ok {
			break
		}
		logger.Warnf("%s: %s", n.Title, n.Body)
	}

	logger.Info("transfer complete")
}
