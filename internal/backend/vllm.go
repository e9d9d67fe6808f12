package backend

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"hfserve/internal/config"
)

// vllmEngine talks to a vLLM OpenAI-compatible server.
type vllmEngine struct {
	*remote
	model string
}

// vllmArgs builds the `vllm serve` command line for spec.
func vllmArgs(spec LoadSpec, apiKey string) func(host string, port int) []string {
	return func(host string, port int) []string {
		args := []string{
			"serve", spec.ModelID,
			"--host", host,
			"--port", strconv.Itoa(port),
			"--tensor-parallel-size", strconv.Itoa(spec.TensorParallelSize),
			"--gpu-memory-utilization", strconv.FormatFloat(spec.GPUMemoryUtilization, 'f', -1, 64),
		}
		if spec.TrustRemoteCode {
			args = append(args, "--trust-remote-code")
		}
		if spec.Quantization != "" {
			args = append(args, "--quantization", spec.Quantization)
		}
		if apiKey != "" {
			args = append(args, "--api-key", apiKey)
		}
		return args
	}
}

func loadVLLM(ctx context.Context, spec LoadSpec, rt Runtime) (Engine, error) {
	r, err := connect(ctx, config.BackendVLLM, rt, "vllm", vllmArgs(spec, rt.APIKey))
	if err != nil {
		return nil, err
	}
	return &vllmEngine{remote: r, model: spec.ModelID}, nil
}

// completionRequest is the /v1/completions payload. Temperature is always
// sent: vLLM treats a missing temperature as 1.0, not greedy.
type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	N           int     `json:"n"`
	Stream      bool    `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Generate runs a single-prompt completion and returns the first candidate.
func (e *vllmEngine) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	req := completionRequest{
		Model:       e.model,
		Prompt:      prompt,
		MaxTokens:   opts.MaxNewTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		N:           1,
	}
	var resp completionResponse
	if err := postJSON(ctx, e.client, e.baseURL+"/v1/completions", e.apiKey, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("vllm returned no choices")
	}
	return resp.Choices[0].Text, nil
}
