// Command api serves the campaign analysis pipeline over HTTP.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"insight_engine/pkg/api/analyze"
	"insight_engine/pkg/core/config"
	"insight_engine/pkg/core/llm"
	"insight_engine/pkg/core/pipeline"
)

func main() {
	configPath := flag.String("config", "", "Optional config file (.yaml or .hjson)")
	addr := flag.String("addr", "", "Listen address (defaults to :8080 or $PORT)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}

	orch := pipeline.New(cfg, llm.NewRegistry(cfg.Provider), log)
	handler := analyze.NewHandler(orch, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", handler.HandleAnalyze)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	listen := *addr
	if listen == "" {
		if port := os.Getenv("PORT"); port != "" {
			listen = ":" + port
		} else {
			listen = ":8080"
		}
	}

	log.Info("api server listening", "addr", listen, "provider", cfg.Provider)
	if err := http.ListenAndServe(listen, mux); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
