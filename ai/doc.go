// Package ai provides abstractions for the AI services used by faqbot.
//
// The resolution pipeline depends on two capabilities only:
//
//   - Embedder: maps normalized text to a fixed-length vector
//   - Model: answers a prompt, optionally reading an attached document
//
// AIProvider aggregates one Embedder and up to two Models (primary and
// secondary) for convenient initialization.
//
// # Implementation Packages
//
//   - ai/openai: embeddings and chat via OpenAI-compatible APIs (langchaingo)
//   - ai/gemini: document-reading Model backed by the Gemini API
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors return interface types. Mock constructors return
// concrete types so tests can inject behavior and assert call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithPrimaryAPIKey(os.Getenv("API_KEY")),
//	    ai.WithSecondaryAPIKey(os.Getenv("openai_api_key")),
//	)
//	provider, err := openai.NewProvider(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "ساعت کاری دانشکده")
//	if m := provider.Primary(); m != nil {
//	    answer, err := m.Generate(ctx, prompt, &ai.Attachment{Data: pdf, MIMEType: "application/pdf"})
//	}
package ai
