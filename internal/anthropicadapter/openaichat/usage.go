package openaichat

import "claudebridge/internal/anthropicadapter/types"

// toUsage maps backend token accounting onto the Anthropic usage shape.
// A nil usage (some backends omit it entirely) yields zeros rather than an
// absent field.
func toUsage(usage *ChatUsage) types.Usage {
	if usage == nil {
		return types.Usage{}
	}
	return types.Usage{
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
	}
}
