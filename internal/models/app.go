package models

type ConfirmationCategory string

const (
	CategoryModify    ConfirmationCategory = "modify"
	CategoryAdd       ConfirmationCategory = "add"
	CategoryDelete    ConfirmationCategory = "delete"
	CategoryComposite ConfirmationCategory = "composite"
)

// ConfirmationRequest represents a pending confirmation (kept here to avoid
// an import cycle between core and the UI packages)
type ConfirmationRequest struct {
	Category    ConfirmationCategory
	Title       string
	Description string
	Content     string // literal text block shown verbatim
	Dangerous   bool
	Loading     bool // true while the affirm/decline follow-up send is in flight
}

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Messages            []Message            // Current messages to display
	Input               string               // User input field
	Status              string               // Status bar text
	Loading             bool                 // Awaiting-reply state from core
	LoadingDots         int                  // Animation counter for loading dots
	Width               int                  // Terminal width
	Height              int                  // Terminal height
	SessionID           string               // Current conversation session id
	PendingConfirmation *ConfirmationRequest // Current confirmation request
	Dataset             *TabularDataset      // Most recently extracted dataset
	Schema              []TableSchema        // Backend table schemas
}
