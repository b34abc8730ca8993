// Package index builds and queries the in-memory embedding index of example
// utterances.
//
// An Index holds one ExampleRecord per surviving example together with a
// parallel vector matrix. It is built once at startup through an Encoder and
// is read-only afterwards, so it can be shared between goroutines freely.
//
// The Encoder is the single gateway to the embedding model. The index stamps
// the encoder's model id, and the matcher embeds queries through the same
// encoder, so corpus and query vectors always share one embedding space.
//
// # Building
//
//	encoder, err := index.NewEncoder(provider.Embedder(), index.WithCache(cache))
//	defer encoder.Release()
//
//	ix, err := index.Build(ctx, sources, encoder)
//
// Embedding runs in batches on an ants worker pool. Batches are retried with
// exponential backoff and results are written back by position, so record
// order always equals corpus order.
package index
