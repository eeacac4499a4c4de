package types

import "github.com/google/uuid"

// ExtractionResult is the validated output of one structured LLM
// extraction call: raw ingredient names the user wants added to or
// removed from the pantry, plus the transcript when the input was audio.
type ExtractionResult struct {
	Add             []string `json:"add"`
	Remove          []string `json:"rm"`
	TranscribedText string   `json:"transcribed_text,omitempty"`
}

// Empty reports whether the extraction carries no changes at all.
func (e ExtractionResult) Empty() bool {
	return len(e.Add) == 0 && len(e.Remove) == 0
}

// RecognizedChange is one catalog-matched inventory change inside a
// proposal, carrying before/after quantities for client review.
type RecognizedChange struct {
	IngredientID     uuid.UUID `json:"ingredient_id"`
	IngredientName   string    `json:"ingredient_name"`
	PreviousQuantity int       `json:"previous_quantity"`
	ProposedQuantity int       `json:"proposed_quantity"`
	// ProposedPantryStaple is set only when the change flips the
	// staple flag; nil leaves the stored flag untouched on apply.
	ProposedPantryStaple *bool `json:"proposed_pantry_staple,omitempty"`
}

// InventoryUpdateProposal is the ephemeral result of reconciling an
// extraction against the catalog and the user's current inventory. It
// is round-tripped to the client for confirmation and consumed exactly
// once by the applier; it is never persisted to the database.
type InventoryUpdateProposal struct {
	ID              uuid.UUID          `json:"id"`
	Recognized      []RecognizedChange `json:"recognized"`
	Unrecognized    []string           `json:"unrecognized"`
	TranscribedText string             `json:"transcribed_text,omitempty"`
}

// MatchedIngredient is one successful catalog match from name validation.
type MatchedIngredient struct {
	InputName    string    `json:"input_name"`
	MatchedName  string    `json:"matched_name"`
	IngredientID uuid.UUID `json:"ingredient_id"`
}

// ValidationResult splits a batch of raw names into catalog matches and
// pass-through unrecognized names.
type ValidationResult struct {
	Recognized   []MatchedIngredient `json:"recognized"`
	Unrecognized []string            `json:"unrecognized"`
}
