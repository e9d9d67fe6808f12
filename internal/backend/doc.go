// Package backend selects and drives the text-generation engine. It is
// structured into small files by concern:
//
//   - dispatcher.go: Dispatcher, the single engine handle, Load/Generate.
//   - options.go: GenerationOptions and merging request overrides over defaults.
//   - quant.go: quantization resolution for vLLM and transformers.
//   - errors.go: ConfigurationError, EngineLoadError, EngineRuntimeError.
//   - engine.go: Engine interface, LoadSpec, Runtime, loader registry.
//   - vllm.go: vLLM OpenAI-compatible server client and launch flags.
//   - tgi.go: transformers backend via text-generation-inference.
//   - launcher.go: spawning and supervising a local engine process.
//   - transport.go: upstream HTTP client, body decoding, health probes.
//   - events.go, eventpub_memory.go: lifecycle events for the launcher.
//
// The engines themselves are Python runtimes. hfserve either spawns them as a
// child process with the load-time settings as flags, or attaches to an
// engine already listening at ENGINE_URL.
package backend
