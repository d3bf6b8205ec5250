package cmd

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/lapwatch/lapwatch/pkg/api"
	"github.com/lapwatch/lapwatch/pkg/logging"
	"github.com/lapwatch/lapwatch/pkg/metrics"
	"github.com/lapwatch/lapwatch/pkg/ratelimit"
	"github.com/lapwatch/lapwatch/pkg/shutdown"
	"github.com/lapwatch/lapwatch/pkg/stopwatch"
)

var (
	servePort      string
	metricsPort    string
	enableMetrics  bool
	logLevel       string
	logJSON        bool
	rateLimitRPS   float64
	rateLimitBurst int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timer API server",
	Long:  `Start an HTTP server exposing a timer registry, with an optional Prometheus metrics endpoint on a separate port.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "8080", "API port")
	serveCmd.Flags().BoolVar(&enableMetrics, "metrics", true, "enable Prometheus metrics endpoint")
	serveCmd.Flags().StringVar(&metricsPort, "metrics-port", "9090", "Prometheus metrics port")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
	serveCmd.Flags().Float64Var(&rateLimitRPS, "rate-limit", 100, "requests per second allowed per client")
	serveCmd.Flags().IntVar(&rateLimitBurst, "rate-limit-burst", 20, "burst size allowed per client")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.NewLogger(logging.ParseLevel(logLevel), logJSON)
	registry := stopwatch.NewRegistry()

	router := mux.NewRouter()
	api.NewHandler(registry, log.WithField("component", "api")).RegisterRoutes(router)

	limiter := ratelimit.NewLimiter(rateLimitRPS, rateLimitBurst)
	apiServer := &http.Server{
		Addr:    ":" + servePort,
		Handler: limiter.Middleware(ratelimit.IPKeyFunc)(router),
	}

	mgr := shutdown.New(30*time.Second, log)
	mgr.Register(shutdown.StopHTTPServer(apiServer, "api", log))

	go func() {
		log.Info("Timer API listening", map[string]interface{}{"port": servePort})
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("API server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	if enableMetrics {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metrics.NewExporter(registry))
		metricsServer := &http.Server{
			Addr:    ":" + metricsPort,
			Handler: metricsMux,
		}
		mgr.Register(shutdown.StopHTTPServer(metricsServer, "metrics", log))

		go func() {
			log.Info("Metrics listening", map[string]interface{}{"port": metricsPort})
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Metrics server failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	mgr.Wait()
	mgr.Shutdown()
	return nil
}
