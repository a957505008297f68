package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups books for browsing. Books reference categories by name.
type Category struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	Slug             string     `json:"slug" db:"slug"`
	Description      string     `json:"description" db:"description"`
	Image            string     `json:"image" db:"image"`
	ParentCategoryID *uuid.UUID `json:"parentCategory,omitempty" db:"parent_category_id"`
	IsSubCategory    bool       `json:"isSubCategory" db:"is_sub_category"`
	IsActive         bool       `json:"isActive" db:"is_active"`
	DisplayOrder     int        `json:"displayOrder" db:"display_order"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// CategoryRequest is the payload for creating a category.
type CategoryRequest struct {
	Name             string     `json:"name" validate:"required"`
	Description      string     `json:"description"`
	Image            string     `json:"image"`
	ParentCategoryID *uuid.UUID `json:"parentCategory,omitempty"`
	IsSubCategory    bool       `json:"isSubCategory"`
	DisplayOrder     int        `json:"displayOrder"`
}

// CategoryUpdate is a partial update; nil fields are left unchanged.
type CategoryUpdate struct {
	Name             *string    `json:"name,omitempty" validate:"omitempty,min=1"`
	Description      *string    `json:"description,omitempty"`
	Image            *string    `json:"image,omitempty"`
	ParentCategoryID *uuid.UUID `json:"parentCategory,omitempty"`
	IsActive         *bool      `json:"isActive,omitempty"`
	DisplayOrder     *int       `json:"displayOrder,omitempty"`
}

// CategoryCount is a category together with the number of books filed under it.
type CategoryCount struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Image     string    `json:"image"`
	BookCount int       `json:"bookCount"`
}

// CategoryBooks is a page of books belonging to one category.
type CategoryBooks struct {
	Category *Category `json:"category"`
	*BookPage
}

var (
	slugInvalid   = regexp.MustCompile(`[^\w\s-]`)
	slugSeparator = regexp.MustCompile(`[\s_-]+`)
)

// Slugify derives a URL slug from a category name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSeparator.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
