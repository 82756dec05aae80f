package types

// Category represents a harm category. The six fixed categories below have
// dedicated option letters in the dialogues; any other non-empty value is a
// reporter-supplied free-text category.
type Category string

const (
	CategoryFalseInformation Category = "false information"
	CategorySpam             Category = "spam"
	CategoryHarassment       Category = "harassment"
	CategoryViolence         Category = "violence"
	CategoryTerrorism        Category = "terrorism"
	CategoryHateSpeech       Category = "hate speech"
)

// AllCategories returns the fixed harm categories
func AllCategories() []Category {
	return []Category{
		CategoryFalseInformation,
		CategorySpam,
		CategoryHarassment,
		CategoryViolence,
		CategoryTerrorism,
		CategoryHateSpeech,
	}
}

// IsFixed reports whether the category is one of the fixed six
func (c Category) IsFixed() bool {
	switch c {
	case CategoryFalseInformation,
		CategorySpam,
		CategoryHarassment,
		CategoryViolence,
		CategoryTerrorism,
		CategoryHateSpeech:
		return true
	default:
		return false
	}
}

// Weight returns the priority weight of the category.
// Free-text categories get the baseline weight 1.
func (c Category) Weight() int {
	switch c {
	case CategoryViolence:
		return 2
	case CategoryTerrorism:
		return 3
	default:
		return 1
	}
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}
