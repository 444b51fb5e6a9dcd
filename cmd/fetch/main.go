// Command fetch downloads a single URL to a file and reports progress.
//
//	fetch [-o path] [-n] URL
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	cfgpkg "github.com/veranemoloko/downloadtask/internal/config"
	"github.com/veranemoloko/downloadtask/internal/download"
	"github.com/veranemoloko/downloadtask/internal/httpclient"
	"github.com/veranemoloko/downloadtask/internal/storage"
	"github.com/veranemoloko/downloadtask/internal/validation"
)

const (
	exitTransport = 1
	exitStorage   = 2
	exitUsage     = 64
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		output         = flag.String("o", "", "destination file (default: last element of the URL path)")
		connectTimeout = flag.Duration("connect-timeout", 60*time.Second, "connection timeout")
		readTimeout    = flag.Duration("read-timeout", 60*time.Second, "maximum time without receiving data")
		chunkSize      = flag.Int("chunk", download.DefaultChunkSize, "read size in bytes")
		removePartial  = flag.Bool("rm-partial", false, "delete the destination if the download fails")
		noClobber      = flag.Bool("n", false, "do not overwrite an existing destination")
		logLevel       = flag.String("log-level", "error", "log level: debug, info, warn, error")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] URL\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return exitUsage
	}
	rawURL := flag.Arg(0)

	dest := *output
	if dest == "" {
		dest = defaultName(rawURL)
	}

	files := storage.NewFileStorage("")
	if err := checkTarget(validation.New(true, 0), files, rawURL, dest, *noClobber); err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
		return exitUsage
	}

	logger := cfgpkg.SetupLogger(&cfgpkg.Config{LogLevel: *logLevel, LogFormat: "text"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := httpclient.DefaultOptions()
	opts.ConnectTimeout = *connectTimeout
	opts.ReadTimeout = *readTimeout
	opts.UserAgent = "fetch/1.0"

	task := download.NewTask(httpclient.NewClient(opts), download.Config{
		ChunkSize:     *chunkSize,
		Storage:       files,
		Logger:        logger,
		RemovePartial: *removePartial,
	})

	events := make(chan download.Event)
	err := task.Execute(ctx, download.Request{URL: rawURL, DestinationPath: dest}, download.NewChanObserver(events))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
		if errors.Is(err, download.ErrInvalidArgument) {
			return exitUsage
		}
		return exitTransport
	}

	started := time.Now()
	last := -1
	var res download.Result
	for ev := range events {
		switch ev.Kind {
		case download.EventProgress:
			if ev.Percent != last {
				last = ev.Percent
				fmt.Fprintf(os.Stderr, "\r%s  %3d%%", dest, ev.Percent)
			}
		case download.EventFinished:
			res = ev.Result
		}
	}
	fmt.Fprintln(os.Stderr)

	switch res.Outcome {
	case download.OutcomeSuccess:
		fmt.Fprintf(os.Stderr, "saved %s (%s in %s)\n",
			dest, formatBytes(res.BytesWritten), time.Since(started).Round(time.Millisecond))
		return 0
	case download.OutcomeStorageError:
		fmt.Fprintf(os.Stderr, "fetch: storage error after %s: %v\n", formatBytes(res.BytesWritten), res.Err)
		return exitStorage
	default:
		fmt.Fprintf(os.Stderr, "fetch: transport error: %v\n", res.Err)
		return exitTransport
	}
}

// checkTarget rejects URLs the downloader cannot fetch and, with noClobber,
// destinations that already exist.
func checkTarget(v *validation.Validator, files *storage.FileStorage, rawURL, dest string, noClobber bool) error {
	if err := v.ValidateURLs([]string{rawURL}); err != nil {
		return err
	}
	if noClobber && files.FileExists(dest) {
		return fmt.Errorf("%s already exists", dest)
	}
	return nil
}

func defaultName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download.bin"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "download.bin"
	}
	return name
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
