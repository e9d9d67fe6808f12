package e2e

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"hfserve/internal/config"
	"hfserve/pkg/types"
)

// TestLiveEngine_Haiku prints a real haiku from a running engine.
// Skips unless HFSERVE_E2E_ENGINE_URL points at a vLLM or TGI server; set
// HFSERVE_E2E_BACKEND=transformers for TGI and HFSERVE_E2E_MODEL_ID to the
// model the engine serves.
func TestLiveEngine_Haiku(t *testing.T) {
	url := strings.TrimSpace(os.Getenv("HFSERVE_E2E_ENGINE_URL"))
	if url == "" {
		t.Skip("HFSERVE_E2E_ENGINE_URL not set; skipping live engine test")
	}
	s := config.Resolve(map[string]string{
		"INFERENCE_BACKEND": os.Getenv("HFSERVE_E2E_BACKEND"),
		"MODEL_ID":          os.Getenv("HFSERVE_E2E_MODEL_ID"),
	})
	if s.Backend == "" {
		s.Backend = config.BackendVLLM
	}
	if s.ModelID == "" {
		s.ModelID = config.Defaults().ModelID
	}
	srv, _ := newStack(t, s, url)

	resp, body := httpPostJSON(t, srv.URL+"/generate", `{"prompt":"Write a 3-line haiku about the ocean.\n","max_new_tokens":64,"temperature":0.7}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var out types.GenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if strings.TrimSpace(out.GeneratedText) == "" {
		t.Fatalf("empty generation")
	}
	t.Logf("haiku:\n%s", out.GeneratedText)
}
