package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/Chuan-Peng-Lab/trialkit/internal/config"
	"github.com/Chuan-Peng-Lab/trialkit/internal/display"
	"github.com/Chuan-Peng-Lab/trialkit/internal/engine"
	"github.com/Chuan-Peng-Lab/trialkit/internal/plugins/htmlresponse"
	"github.com/Chuan-Peng-Lab/trialkit/internal/session"
	"github.com/Chuan-Peng-Lab/trialkit/internal/timeline"
	"github.com/Chuan-Peng-Lab/trialkit/internal/ws"
	staticserver "github.com/Chuan-Peng-Lab/trialkit/static"
)

const version = "v1.2.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
		simulate    = flag.String("simulate", "", `Run the timeline headless ("data-only" or "visual") and exit`)
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`trialkit - Browser-based behavioral trial runner

Usage: %s [options]

Options:
  -h, --help       Show this help message
  -v, --version    Show version information
  --port PORT      Port to listen on (default: 8080 or PORT env var)
  --simulate MODE  Run every trial headless with synthetic responses and
                   exit. MODE is "data-only" or "visual".

Environment Variables:
  PORT             Port to listen on (default: 8080)
  TIMELINE_FILE    Path to a YAML timeline (default: built-in demo timeline)
  EXPORT_FILE      Append finished session results to this file (default: off)
  LOG_LEVEL        trace, debug, info, warn or error (default: info)

Examples:
  %s                  Start server with the demo timeline
  %s --port 3000      Start server on port 3000
  TIMELINE_FILE=timeline.yaml %s --simulate data-only

Visit http://localhost:8080 after starting the server.
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("trialkit %s\n", version)
		return
	}

	// Determine port
	port := *portFlag
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Config
	cfg := config.FromEnv()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// Timeline
	trials := timeline.Default()
	if cfg.TimelineFile != "" {
		var err error
		trials, err = timeline.Load(cfg.TimelineFile)
		if err != nil {
			log.Fatalf("timeline: %v", err)
		}
		zerologlog.Info().Str("file", cfg.TimelineFile).Int("trials", len(trials)).Msg("timeline loaded")
	} else {
		zerologlog.Info().Int("trials", len(trials)).Msg("using built-in demo timeline")
	}

	if *simulate != "" {
		runSimulation(*simulate, trials)
		return
	}

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Socket server + session manager
	sm := session.NewManager(cfg.ExportFile)
	sock := ws.New(sm, trials)
	io := sock.Mount(r)
	defer io.Close()

	// Plugin metadata for client-side tooling
	r.GET("/api/plugin", func(c *gin.Context) {
		c.JSON(http.StatusOK, htmlresponse.Info())
	})

	r.GET("/api/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": sm.Count()})
	})

	// Serve the embedded participant page for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

// runSimulation plays the whole timeline on a virtual clock with
// synthetic responses and prints the collected results.
func runSimulation(mode string, trials []htmlresponse.Params) {
	var m htmlresponse.SimulationMode
	switch mode {
	case "data-only":
		m = htmlresponse.SimulateDataOnly
	case "visual":
		m = htmlresponse.SimulateVisual
	default:
		log.Fatalf("unknown simulation mode %q (want data-only or visual)", mode)
	}

	eng := engine.NewVirtual(time.Now())
	defer eng.CancelAll()
	surf := display.New()

	results := make([]htmlresponse.Result, 0, len(trials))
	for i, p := range trials {
		tr := htmlresponse.New(eng, p)
		err := tr.Simulate(m, htmlresponse.SimulationOptions{}, surf.Root(), nil, func(r htmlresponse.Result) {
			results = append(results, r)
		})
		if err != nil {
			log.Fatalf("trial %d: %v", i+1, err)
		}
		if m == htmlresponse.SimulateVisual {
			eng.Advance(time.Hour)
		}
		if len(results) != i+1 {
			log.Fatalf("trial %d never finished, check its durations", i+1)
		}
	}

	for i, r := range results {
		zerologlog.Info().
			Int("trial", i+1).
			Str("stimulus", r.Stimulus).
			Interface("response", r.Response).
			Interface("rt", r.RT).
			Msg("simulated")
	}
}
