package models

import "time"

// FeedbackCategory tags reusable feedback templates.
type FeedbackCategory string

const (
	FeedbackCategoryCodeQuality   FeedbackCategory = "code_quality"
	FeedbackCategoryDocumentation FeedbackCategory = "documentation"
	FeedbackCategoryTesting       FeedbackCategory = "testing"
	FeedbackCategoryCollaboration FeedbackCategory = "collaboration"
	FeedbackCategoryTimeliness    FeedbackCategory = "timeliness"
	FeedbackCategoryDesign        FeedbackCategory = "design"
	FeedbackCategoryPerformance   FeedbackCategory = "performance"
	FeedbackCategoryPresentation  FeedbackCategory = "presentation"
	FeedbackCategoryGeneral       FeedbackCategory = "general"
)

// FeedbackCategories lists every valid category.
var FeedbackCategories = []FeedbackCategory{
	FeedbackCategoryCodeQuality,
	FeedbackCategoryDocumentation,
	FeedbackCategoryTesting,
	FeedbackCategoryCollaboration,
	FeedbackCategoryTimeliness,
	FeedbackCategoryDesign,
	FeedbackCategoryPerformance,
	FeedbackCategoryPresentation,
	FeedbackCategoryGeneral,
}

// Valid reports whether the category is one of the fixed set.
func (c FeedbackCategory) Valid() bool {
	for _, known := range FeedbackCategories {
		if c == known {
			return true
		}
	}
	return false
}

// FeedbackTemplate is canned feedback text graders reuse. Default
// templates are seeded and cannot be deleted.
type FeedbackTemplate struct {
	ID        string           `db:"id" json:"id"`
	Title     string           `db:"title" json:"title"`
	Content   string           `db:"content" json:"content"`
	Category  FeedbackCategory `db:"category" json:"category"`
	IsDefault bool             `db:"is_default" json:"is_default"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}
