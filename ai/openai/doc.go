// Package openai provides ai interface implementations backed by
// OpenAI-compatible embedding APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// The embedder wraps langchaingo's OpenAI client. Client construction is
// lazy and happens at most once per process; until the first embedding
// call the provider reports not ready.
package openai
