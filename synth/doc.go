// Package synth hosts the Synthesizer implementations. Each subpackage
// adapts one provider SDK (OpenAI chat completions, Anthropic messages) to
// the single-shot Complete call the workers use for narrative text.
package synth
