/*
DESCRIPTION
  kltrack tracks keypoints across a sequence of frames using pyramidal
  Lucas-Kanade optical flow, writing the surviving keypoints of each frame to
  standard output.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// kltrack is a command line keypoint tracker.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/opticflow/frame"
	"github.com/ausocean/opticflow/metric"
	"github.com/ausocean/opticflow/source"
	"github.com/ausocean/opticflow/store"
	"github.com/ausocean/opticflow/track"
	"github.com/ausocean/opticflow/trajplot"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Misc constants.
const (
	profilePath = "kltrack.prof"
	pkg         = "kltrack: "
)

// Corner detection parameters.
const (
	detectQuality = 0.01
	detectMinDist = 10
)

// This is set to true if the 'profile' build tag is provided on build.
var canProfile = false

// options holds the command line options.
type options struct {
	frames    string
	watch     string
	idle      time.Duration
	video     string
	keypoints string
	detect    int
	db        string
	plot      string
	metrics   string
	buckets   string
}

func main() {
	var opts options
	showVersion := flag.Bool("version", false, "show version")
	logPath := flag.String("log", "kltrack.log", "path of the rolling log file")
	flag.StringVar(&opts.frames, "frames", "", "directory of image frames, tracked in file name order")
	flag.StringVar(&opts.watch, "watch", "", "directory to watch for new image frames")
	flag.DurationVar(&opts.idle, "idle", 30*time.Second, "stop watching after no new frame for this long, 0 waits forever")
	flag.StringVar(&opts.video, "video", "", "video file to track (requires withcv build tag)")
	flag.StringVar(&opts.keypoints, "keypoints", "", "file of initial keypoints, one \"row col\" per line")
	flag.IntVar(&opts.detect, "detect", 0, "detect up to this many corners in the first frame as keypoints (requires withcv build tag)")
	flag.StringVar(&opts.db, "db", "", "SQLite database to record the run in")
	flag.StringVar(&opts.plot, "plot", "", "file to render trajectories to, e.g. tracks.png")
	flag.StringVar(&opts.metrics, "metrics", "", "address to serve Prometheus metrics on, e.g. :9090")
	flag.StringVar(&opts.buckets, "step-buckets", "", "comma separated step duration histogram buckets in seconds")

	// Each tracker configuration variable may be given as a flag of the same name.
	vars := make(map[string]*string)
	for _, v := range config.Variables {
		vars[v.Name] = flag.String(v.Name, "", fmt.Sprintf("tracker %s (%s)", v.Name, v.Type))
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	defer fileLog.Close()

	log := logging.New(logVerbosity, io.MultiWriter(os.Stderr, fileLog), logSuppress)
	log.Info("starting kltrack", "version", version)

	if canProfile {
		profile(log)
		defer pprof.StopCPUProfile()
		log.Info("profiling started")
	}

	cfg := config.Config{Logger: log}
	update := make(map[string]string)
	for name, v := range vars {
		if *v != "" {
			update[name] = *v
		}
	}
	cfg.Update(update)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, cfg, opts, log, os.Stdout)
	if err != nil {
		log.Fatal(pkg+"tracking failed", "error", err.Error())
	}
}

// run tracks keypoints according to opts, writing snapshots to w.
func run(ctx context.Context, cfg config.Config, opts options, log logging.Logger, w io.Writer) error {
	var trackOpts []track.Option
	if opts.metrics != "" {
		buckets, err := metric.ParseBuckets(opts.buckets)
		if err != nil {
			return err
		}
		m := metric.New(buckets, nil)
		m.MustRegister()
		trackOpts = append(trackOpts, track.WithMetrics(m))
		go serveMetrics(opts.metrics, log)
	}

	tr, err := track.New(cfg, trackOpts...)
	if err != nil {
		return fmt.Errorf("could not create tracker: %w", err)
	}
	defer tr.Close()
	log.SetLevel(tr.Config().LogLevel)

	src, desc, closeSrc, err := openSource(ctx, opts, log)
	if err != nil {
		return err
	}
	defer closeSrc()

	first, err := src.Next()
	if err != nil {
		return fmt.Errorf("could not read first frame: %w", err)
	}
	kps, err := initialKeypoints(opts, first)
	if err != nil {
		return err
	}
	log.Info("keypoints chosen", "count", len(kps))

	var db *store.Store
	var runID string
	if opts.db != "" {
		db, err = store.Open(opts.db)
		if err != nil {
			return err
		}
		defer db.Close()
		runID, err = db.StartRun(desc, store.ParamsOf(tr.Config()), len(kps))
		if err != nil {
			return err
		}
		log.Info("recording run", "db", opts.db, "run", runID)
	}

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	var snaps []track.Snapshot
	err = tr.Run(ctx, &replaySource{first: first, src: src}, kps, func(s track.Snapshot) error {
		snaps = append(snaps, s)
		if db != nil {
			err := db.SaveSnapshot(runID, s)
			if err != nil {
				return err
			}
		}
		return writeSnapshot(bw, s)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	sum := track.Summarize(snaps)
	log.Info("tracking summary",
		"frames", sum.Frames,
		"initial", sum.Initial,
		"final", sum.Final,
		"survival", sum.Survival,
		"mean displacement", sum.MeanDisplacement,
		"overlap", sum.Overlap,
	)

	if opts.plot != "" && len(snaps) > 0 {
		err = trajplot.Save(snaps, desc, opts.plot)
		if err != nil {
			return err
		}
		log.Info("trajectories plotted", "file", opts.plot)
	}
	return nil
}

// openSource opens the frame source selected by opts, returning it along
// with a description for records and a function releasing it.
func openSource(ctx context.Context, opts options, log logging.Logger) (track.FrameSource, string, func(), error) {
	switch {
	case opts.frames != "":
		d, err := source.NewDir(log, opts.frames)
		if err != nil {
			return nil, "", nil, err
		}
		return d, opts.frames, func() {}, nil
	case opts.watch != "":
		w, err := source.NewWatch(ctx, log, opts.watch, opts.idle)
		if err != nil {
			return nil, "", nil, err
		}
		return w, opts.watch, func() { w.Close() }, nil
	case opts.video != "":
		v, err := source.NewVideo(log, opts.video)
		if err != nil {
			return nil, "", nil, err
		}
		return v, opts.video, func() { v.Close() }, nil
	default:
		return nil, "", nil, errors.New("one of -frames, -watch or -video is required")
	}
}

// initialKeypoints reads or detects the keypoints to track in the first frame.
func initialKeypoints(opts options, first *frame.Frame) ([]frame.Keypoint, error) {
	switch {
	case opts.keypoints != "":
		f, err := os.Open(opts.keypoints)
		if err != nil {
			return nil, fmt.Errorf("could not open keypoints: %w", err)
		}
		defer f.Close()
		return source.ReadKeypoints(f)
	case opts.detect > 0:
		kps, err := source.Detect(first, opts.detect, detectQuality, detectMinDist)
		if err != nil {
			return nil, fmt.Errorf("could not detect keypoints: %w", err)
		}
		return kps, nil
	default:
		return nil, errors.New("one of -keypoints or -detect is required")
	}
}

// writeSnapshot writes a snapshot as one line per point, "frame id row col".
func writeSnapshot(w io.Writer, s track.Snapshot) error {
	for _, p := range s.Points {
		_, err := fmt.Fprintf(w, "%d %d %.3f %.3f\n", s.Frame, p.ID, p.Pos.Row, p.Pos.Col)
		if err != nil {
			return err
		}
	}
	return nil
}

// replaySource yields first, which has already been read from src, and then
// the rest of src.
type replaySource struct {
	first *frame.Frame
	src   track.FrameSource
}

func (r *replaySource) Next() (*frame.Frame, error) {
	if r.first != nil {
		f := r.first
		r.first = nil
		return f, nil
	}
	return r.src.Next()
}

// serveMetrics serves the default Prometheus registry on addr.
func serveMetrics(addr string, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("serving metrics", "addr", addr)
	err := http.ListenAndServe(addr, mux)
	if err != nil {
		log.Error(pkg+"metrics server stopped", "error", err.Error())
	}
}

// profile opens a file to hold CPU profiling metrics and then starts the
// CPU profiler.
func profile(l logging.Logger) {
	f, err := os.Create(profilePath)
	if err != nil {
		l.Fatal(pkg+"could not create CPU profile", "error", err.Error())
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		l.Fatal(pkg+"could not start CPU profile", "error", err.Error())
	}
}
