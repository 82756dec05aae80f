package flow

import "github.com/modsec-lab/aegis/pkg/domain/types"

// Keywords recognized at the text level in both dialogues
const (
	StartKeyword  = "report"
	CancelKeyword = "cancel"
	HelpKeyword   = "help"
	NextKeyword   = "next"
	BeginKeyword  = "start"

	YesKeyword = "Y"
	NoKeyword  = "N"

	// Moderator-only options
	ConfirmKeyword     = "Y"
	NotHarmfulKeyword  = "G"
	PerpetratorKeyword = "P"
	VictimKeyword      = "V"
)

// CategoryOption binds an option letter to a harm category and its priority weight
type CategoryOption struct {
	Key      string
	Category types.Category
	Weight   int
}

// DefaultCategories returns the fixed category options presented in the dialogues
func DefaultCategories() []CategoryOption {
	return []CategoryOption{
		{Key: "A", Category: types.CategoryFalseInformation, Weight: 1},
		{Key: "B", Category: types.CategorySpam, Weight: 1},
		{Key: "C", Category: types.CategoryHarassment, Weight: 1},
		{Key: "D", Category: types.CategoryViolence, Weight: 2},
		{Key: "E", Category: types.CategoryTerrorism, Weight: 3},
		{Key: "F", Category: types.CategoryHateSpeech, Weight: 1},
	}
}

// categoryByKey resolves an option letter, returning ok=false for free text
func categoryByKey(options []CategoryOption, key string) (CategoryOption, bool) {
	for _, opt := range options {
		if opt.Key == key {
			return opt, true
		}
	}
	return CategoryOption{}, false
}

// HelpText is returned for the help keyword in a DM
const HelpText = "Use the `report` command to begin the reporting process.\n" +
	"Use the `cancel` command to cancel the report process.\n"
