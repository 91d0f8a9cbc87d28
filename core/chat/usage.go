package chat

import "chatgate/providers/ai"

// UsageAccumulator aggregates the token counts reported by whichever
// adapter responded. Providers that report nothing contribute zeros; a
// missing total is derived from prompt plus completion so callers always
// see a consistent figure.
type UsageAccumulator struct {
	usage ai.Usage
}

// Record folds one usage report into the running totals. Nil reports are
// ignored.
func (a *UsageAccumulator) Record(usage *ai.Usage) {
	if usage == nil {
		return
	}
	a.usage.PromptTokens += usage.PromptTokens
	a.usage.CompletionTokens += usage.CompletionTokens
	a.usage.TotalTokens += usage.TotalTokens
}

// Totals returns the aggregated usage. When no provider reported a total,
// it is computed as prompt plus completion tokens.
func (a *UsageAccumulator) Totals() ai.Usage {
	totals := a.usage
	if totals.TotalTokens == 0 {
		totals.TotalTokens = totals.PromptTokens + totals.CompletionTokens
	}
	return totals
}
