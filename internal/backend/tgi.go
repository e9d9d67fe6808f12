package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"hfserve/internal/config"
)

// tgiEngine serves the transformers backend through Hugging Face
// text-generation-inference, which loads the model with transformers and
// places it on the available devices automatically.
type tgiEngine struct {
	*remote
}

// tgiArgs builds the text-generation-launcher command line for spec.
func tgiArgs(spec LoadSpec) func(host string, port int) []string {
	return func(host string, port int) []string {
		args := []string{
			"--model-id", spec.ModelID,
			"--hostname", host,
			"--port", strconv.Itoa(port),
		}
		if spec.TrustRemoteCode {
			args = append(args, "--trust-remote-code")
		}
		if q := spec.QuantizationConfig.tgiQuantize(); q != "" {
			args = append(args, "--quantize", q)
		}
		return args
	}
}

func loadTGI(ctx context.Context, spec LoadSpec, rt Runtime) (Engine, error) {
	r, err := connect(ctx, config.BackendTransformers, rt, "text-generation-launcher", tgiArgs(spec))
	if err != nil {
		return nil, err
	}
	return &tgiEngine{remote: r}, nil
}

// tgiParameters mirrors the /generate parameters object. Temperature and
// TopP are only sent when sampling: TGI rejects temperature 0 and top_p 1.
type tgiParameters struct {
	MaxNewTokens   int      `json:"max_new_tokens"`
	DoSample       bool     `json:"do_sample"`
	Temperature    *float64 `json:"temperature,omitempty"`
	TopP           *float64 `json:"top_p,omitempty"`
	ReturnFullText bool     `json:"return_full_text"`
}

type tgiRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters tgiParameters `json:"parameters"`
}

type tgiOutput struct {
	GeneratedText string `json:"generated_text"`
}

// tgiResponse accepts both the object form of /generate and the list form
// returned by pipeline-style endpoints.
type tgiResponse struct {
	outputs []tgiOutput
}

func (r *tgiResponse) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &r.outputs)
	}
	var one tgiOutput
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	r.outputs = []tgiOutput{one}
	return nil
}

// tgiParams maps options onto TGI parameters. Temperature 0 selects greedy
// decoding instead of sampling at zero temperature.
func tgiParams(opts GenerationOptions) tgiParameters {
	p := tgiParameters{
		MaxNewTokens:   opts.MaxNewTokens,
		DoSample:       opts.Temperature > 0,
		ReturnFullText: true,
	}
	if p.DoSample {
		t := opts.Temperature
		p.Temperature = &t
		if opts.TopP > 0 && opts.TopP < 1 {
			tp := opts.TopP
			p.TopP = &tp
		}
	}
	return p
}

// Generate runs the prompt and returns only the newly generated text.
func (e *tgiEngine) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	req := tgiRequest{Inputs: prompt, Parameters: tgiParams(opts)}
	var resp tgiResponse
	if err := postJSON(ctx, e.client, e.baseURL+"/generate", e.apiKey, req, &resp); err != nil {
		return "", err
	}
	if len(resp.outputs) == 0 {
		return "", errors.New("text-generation-inference returned no output")
	}
	return stripPromptEcho(resp.outputs[0].GeneratedText, prompt), nil
}

// stripPromptEcho removes prompt from the front of text exactly once when the
// engine echoed it; otherwise text is returned unchanged.
func stripPromptEcho(text, prompt string) string {
	return strings.TrimPrefix(text, prompt)
}
