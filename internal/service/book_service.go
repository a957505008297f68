package service

import (
	"context"
	"fmt"
	"time"

	"bookstore/internal/model"
	"bookstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultFlaggedLimit = 10

var maxDiscount = decimal.NewFromInt(100)

// bookService implements BookService.
type bookService struct {
	repo   repository.BookRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewBookService creates a new book service.
func NewBookService(repo repository.BookRepository, logger zerolog.Logger) BookService {
	return &bookService{
		repo:   repo,
		logger: logger.With().Str("service", "book").Logger(),
		now:    time.Now,
	}
}

// Create adds a book to the catalogue.
func (s *bookService) Create(ctx context.Context, req *model.BookRequest) (*model.Book, error) {
	if err := validatePricing(req.Price, req.Discount); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	book := &model.Book{
		ID:            uuid.New(),
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Price:         req.Price,
		Discount:      req.Discount,
		CoverImage:    req.CoverImage,
		Category:      req.Category,
		Stock:         req.Stock,
		ISBN:          req.ISBN,
		PublishedYear: req.PublishedYear,
		IsFeatured:    req.IsFeatured,
		IsBestSeller:  req.IsBestSeller,
		IsNewRelease:  req.IsNewRelease,
		IsPopular:     req.IsPopular,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		s.logger.Error().Err(err).Str("isbn", req.ISBN).Msg("failed to create book")
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.logger.Info().Str("book_id", book.ID.String()).Str("title", book.Title).Msg("book created")
	return book, nil
}

// GetByID retrieves a single book.
func (s *bookService) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to get book")
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if book == nil {
		return nil, model.ErrBookNotFound
	}
	return book, nil
}

// Update applies a partial update to a book.
func (s *bookService) Update(ctx context.Context, id uuid.UUID, upd *model.BookUpdate) (*model.Book, error) {
	book, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.Apply(book)
	if err := validatePricing(book.Price, book.Discount); err != nil {
		return nil, err
	}
	book.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, book); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		s.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to update book")
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	s.logger.Info().Str("book_id", id.String()).Msg("book updated")
	return book, nil
}

// Delete removes a book.
func (s *bookService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to delete book")
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if !deleted {
		return model.ErrBookNotFound
	}

	s.logger.Info().Str("book_id", id.String()).Msg("book deleted")
	return nil
}

// List returns one page of the catalogue.
func (s *bookService) List(ctx context.Context, page, limit int) (*model.BookPage, error) {
	page, limit = normalisePage(page, limit)

	books, total, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error().Err(err).Int("page", page).Msg("failed to list books")
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return model.NewBookPage(books, page, limit, total), nil
}

// ListByCategory returns one page of the books filed under a category name.
func (s *bookService) ListByCategory(ctx context.Context, category string, page, limit int) (*model.BookPage, error) {
	page, limit = normalisePage(page, limit)

	books, total, err := s.repo.ListByCategory(ctx, category, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Msg("failed to list books by category")
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return model.NewBookPage(books, page, limit, total), nil
}

// Search filters the catalogue.
func (s *bookService) Search(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, model.InvalidInput("minPrice cannot exceed maxPrice")
	}

	books, err := s.repo.Search(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Str("query", filter.Query).Msg("failed to search books")
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

// Categories returns the distinct category names in use.
func (s *bookService) Categories(ctx context.Context) ([]string, error) {
	names, err := s.repo.ListCategoryNames(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list book categories")
		return nil, fmt.Errorf("failed to list book categories: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// ListFlagged returns one of the curated lists.
func (s *bookService) ListFlagged(ctx context.Context, flag model.BookFlag, limit int) ([]model.Book, error) {
	if flag.Column() == "" {
		return nil, model.InvalidInput(fmt.Sprintf("unknown book list %q", flag))
	}
	if limit < 1 {
		limit = defaultFlaggedLimit
	}

	books, err := s.repo.ListFlagged(ctx, flag, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("flag", string(flag)).Msg("failed to list flagged books")
		return nil, fmt.Errorf("failed to list %s books: %w", flag, err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

func validatePricing(price, discount decimal.Decimal) error {
	if price.IsNegative() {
		return model.InvalidInput("price cannot be negative")
	}
	if discount.IsNegative() || discount.GreaterThan(maxDiscount) {
		return model.InvalidInput("discount must be between 0 and 100")
	}
	return nil
}
