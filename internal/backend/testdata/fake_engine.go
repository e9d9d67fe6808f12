package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

// A stand-in for `vllm serve` and text-generation-launcher. It understands
// only the flags the launcher needs and answers every request with a fixed
// completion.
func main() {
	if os.Getenv("FAKE_ENGINE_EXIT") != "" {
		fmt.Fprintln(os.Stderr, "fake engine: CUDA out of memory")
		os.Exit(3)
	}
	if p := os.Getenv("FAKE_ENGINE_ARGS_FILE"); p != "" {
		_ = os.WriteFile(p, []byte(strings.Join(os.Args[1:], "\n")), 0o644)
	}
	host, port := "127.0.0.1", "0"
	args := os.Args[1:]
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "--host", "--hostname":
			host = args[i+1]
		case "--port":
			port = args[i+1]
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"text": " from vllm", "finish_reason": "length"}},
		})
	})
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Inputs string `json:"inputs"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"generated_text": in.Inputs + " from tgi"})
	})

	srv := &http.Server{Addr: host + ":" + port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
