package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book represents a title in the catalogue.
type Book struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Title         string          `json:"title" db:"title"`
	Author        string          `json:"author" db:"author"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Discount      decimal.Decimal `json:"discount" db:"discount"` // percent, 0..100
	CoverImage    string          `json:"coverImage" db:"cover_image"`
	Category      string          `json:"category" db:"category"`
	Stock         int             `json:"stock" db:"stock"`
	ISBN          string          `json:"isbn" db:"isbn"`
	PublishedYear int             `json:"publishedYear" db:"published_year"`
	SalesCount    int             `json:"salesCount" db:"sales_count"`
	IsFeatured    bool            `json:"isFeatured" db:"is_featured"`
	IsBestSeller  bool            `json:"isBestSeller" db:"is_best_seller"`
	IsNewRelease  bool            `json:"isNewRelease" db:"is_new_release"`
	IsPopular     bool            `json:"isPopular" db:"is_popular"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

var hundred = decimal.NewFromInt(100)

// EffectivePrice returns the unit price net of the book's discount.
func (b *Book) EffectivePrice() decimal.Decimal {
	if b.Discount.IsZero() {
		return b.Price
	}
	factor := hundred.Sub(b.Discount).Div(hundred)
	return b.Price.Mul(factor).Round(2)
}

// BookFlag selects one of the curated book lists.
type BookFlag string

const (
	FlagFeatured   BookFlag = "featured"
	FlagBestSeller BookFlag = "best-sellers"
	FlagNewRelease BookFlag = "new-releases"
	FlagPopular    BookFlag = "popular"
)

// Column returns the books column backing the flag, or "" if unknown.
func (f BookFlag) Column() string {
	switch f {
	case FlagFeatured:
		return "is_featured"
	case FlagBestSeller:
		return "is_best_seller"
	case FlagNewRelease:
		return "is_new_release"
	case FlagPopular:
		return "is_popular"
	default:
		return ""
	}
}

// BookFilter narrows a catalogue search.
type BookFilter struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// BookRequest is the payload for creating a book.
type BookRequest struct {
	Title         string          `json:"title" validate:"required"`
	Author        string          `json:"author" validate:"required"`
	Description   string          `json:"description" validate:"required"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
	CoverImage    string          `json:"coverImage" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	Stock         int             `json:"stock" validate:"gte=0"`
	ISBN          string          `json:"isbn" validate:"required"`
	PublishedYear int             `json:"publishedYear" validate:"required,gt=0"`
	IsFeatured    bool            `json:"isFeatured"`
	IsBestSeller  bool            `json:"isBestSeller"`
	IsNewRelease  bool            `json:"isNewRelease"`
	IsPopular     bool            `json:"isPopular"`
}

// BookUpdate is a partial update; nil fields are left unchanged.
type BookUpdate struct {
	Title         *string          `json:"title,omitempty" validate:"omitempty,min=1"`
	Author        *string          `json:"author,omitempty" validate:"omitempty,min=1"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,min=1"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
	CoverImage    *string          `json:"coverImage,omitempty" validate:"omitempty,min=1"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,min=1"`
	Stock         *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	ISBN          *string          `json:"isbn,omitempty" validate:"omitempty,min=1"`
	PublishedYear *int             `json:"publishedYear,omitempty" validate:"omitempty,gt=0"`
	SalesCount    *int             `json:"salesCount,omitempty" validate:"omitempty,gte=0"`
	IsFeatured    *bool            `json:"isFeatured,omitempty"`
	IsBestSeller  *bool            `json:"isBestSeller,omitempty"`
	IsNewRelease  *bool            `json:"isNewRelease,omitempty"`
	IsPopular     *bool            `json:"isPopular,omitempty"`
}

// Apply copies the set fields of u onto b.
func (u *BookUpdate) Apply(b *Book) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	if u.Price != nil {
		b.Price = *u.Price
	}
	if u.Discount != nil {
		b.Discount = *u.Discount
	}
	if u.CoverImage != nil {
		b.CoverImage = *u.CoverImage
	}
	if u.Category != nil {
		b.Category = *u.Category
	}
	if u.Stock != nil {
		b.Stock = *u.Stock
	}
	if u.ISBN != nil {
		b.ISBN = *u.ISBN
	}
	if u.PublishedYear != nil {
		b.PublishedYear = *u.PublishedYear
	}
	if u.SalesCount != nil {
		b.SalesCount = *u.SalesCount
	}
	if u.IsFeatured != nil {
		b.IsFeatured = *u.IsFeatured
	}
	if u.IsBestSeller != nil {
		b.IsBestSeller = *u.IsBestSeller
	}
	if u.IsNewRelease != nil {
		b.IsNewRelease = *u.IsNewRelease
	}
	if u.IsPopular != nil {
		b.IsPopular = *u.IsPopular
	}
}

// BookPage is one page of a book listing.
type BookPage struct {
	Books       []Book `json:"books"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalBooks  int    `json:"totalBooks"`
}

// NewBookPage computes page counters for a listing.
func NewBookPage(books []Book, page, limit, total int) *BookPage {
	if books == nil {
		books = []Book{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &BookPage{
		Books:       books,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalBooks:  total,
	}
}
