// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements ai.Embedder and the secondary ai.Model using the
// langchaingo library to communicate with OpenAI or OpenAI-compatible services
// (such as Ollama, LocalAI, or vLLM). NewProvider also wires the Gemini
// primary model from ai/gemini when a Gemini credential is configured.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithEmbeddingModel("nomic-embed-text"),
//	    ai.WithSecondaryAPIKey(key),
//	)
//
//	provider, err := openai.NewProvider(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "sample text")
//	answer, err := provider.Secondary().Generate(ctx, prompt, nil)
package openai
