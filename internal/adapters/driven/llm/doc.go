// Package llm holds the generative model adapters.
//
// Every adapter implements driven.LLMService with a single-turn Generate
// call; streaming and tool use are not needed by the answer pipeline.
package llm

// ErrorBody trims an error response for inclusion in an error message.
func ErrorBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
