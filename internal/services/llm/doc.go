// Package llm provides a chat-completions client for the annotation model.
//
// The client targets any OpenAI-compatible endpoint (OpenRouter by default)
// and always requests JSON output at temperature 0 so annotation results stay
// deterministic and machine-parseable.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.CompleteJSON: send system/user prompts, receive the raw JSON payload.
// Client.HealthCheck: verify the API key and model respond.
// DecodeLLMJSON: parse model output, tolerating code fences and prose padding.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx, network timeouts, and empty
// completions with exponential backoff (base 1s, max 10s, up to 5 attempts),
// honoring Retry-After when the server provides one. Context cancellation
// aborts retries immediately.
//
// # Fallback
//
// Annotation is advisory. When the model is unavailable or returns something
// unusable, callers leave the annotation columns empty and move on.
package llm
