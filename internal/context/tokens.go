package context

// charsPerToken is the fixed character-to-token ratio used for budget
// accounting. The approximation is part of the assembler's contract: budgets
// are enforced against this estimate, not against provider tokenizers.
const charsPerToken = 4

// EstimateTokens estimates the token cost of a text block.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}
