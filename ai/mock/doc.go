// Package mock provides test doubles for the ai package interfaces.
//
// # Usage
//
//	embedder := mock.NewMockEmbedder().
//	    WithVector("ساعت کاری دانشکده چنده؟", 1, 0, 0).
//	    WithVector("ساعت کاری دانشگاه چیه؟", 0.9, 0.1, 0)
//
//	primary := mock.NewMockModel("primary")
//	primary.ByAttachment = map[string]string{"rules.pdf": "answer"}
//
//	provider := mock.NewMockProviderWithServices(embedder, primary, nil)
//
//	// Check call counts
//	count := primary.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: registered vectors first, then deterministic unit vectors from an FNV hash
//   - MockModel: GenerateFunc, then Err, then ByAttachment, then Reply
//   - MockProvider: aggregates the mocks; nil models read as unconfigured
package mock
