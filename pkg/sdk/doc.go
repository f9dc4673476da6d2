// Package synapse embeds the synapse knowledge store in a Go program.
//
// The client captures text, web pages and images for a user, enriches them
// with an OpenAI-compatible model and answers natural-language queries with
// the user's most similar items. Searches use the store's vector index when
// it is available and fall back to an exact in-process scan otherwise.
//
//	client, _ := synapse.New(ctx,
//	    synapse.WithRedis("localhost:6379", ""),
//	    synapse.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""),
//	)
//	defer client.Close()
//
//	_, _ = client.AddURL(ctx, "u1", "https://example.com/post")
//	res, _ := client.Search(ctx, "u1", "articles about caching", 5)
//
// WithMemory swaps Redis for a process-local store, which is handy in tests.
package synapse
