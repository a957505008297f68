package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const bookColumns = `id, title, author, description, price, discount, cover_image, category,
	stock, isbn, published_year, sales_count, is_featured, is_best_seller, is_new_release,
	is_popular, created_at, updated_at`

// bookRepository implements the BookRepository interface using PostgreSQL.
type bookRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool *pgxpool.Pool, logger zerolog.Logger) BookRepository {
	return &bookRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "book").Logger(),
	}
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Description, &b.Price, &b.Discount, &b.CoverImage,
		&b.Category, &b.Stock, &b.ISBN, &b.PublishedYear, &b.SalesCount, &b.IsFeatured,
		&b.IsBestSeller, &b.IsNewRelease, &b.IsPopular, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepository) collect(rows pgx.Rows) ([]model.Book, error) {
	defer rows.Close()

	books := []model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan book row")
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating book rows")
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// Create inserts a new book.
func (r *bookRepository) Create(ctx context.Context, b *model.Book) error {
	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.pool.Exec(ctx, query,
		b.ID, b.Title, b.Author, b.Description, b.Price, b.Discount, b.CoverImage, b.Category,
		b.Stock, b.ISBN, b.PublishedYear, b.SalesCount, b.IsFeatured, b.IsBestSeller,
		b.IsNewRelease, b.IsPopular, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn().Str("isbn", b.ISBN).Msg("duplicate isbn")
			return model.InvalidInput("a book with this ISBN already exists")
		}
		r.logger.Error().Err(err).Str("book_id", b.ID.String()).Msg("failed to create book")
		return fmt.Errorf("failed to create book: %w", err)
	}

	r.logger.Debug().Str("book_id", b.ID.String()).Msg("book created successfully")
	return nil
}

// GetByID retrieves a single book by its ID.
func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	b, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("book_id", id.String()).Msg("book not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to query book")
		return nil, fmt.Errorf("failed to query book: %w", err)
	}

	return b, nil
}

// GetByIDs retrieves multiple books by their IDs.
func (r *bookRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Book, error) {
	if len(ids) == 0 {
		return []model.Book{}, nil
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = ANY($1) ORDER BY title`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query books by IDs")
		return nil, fmt.Errorf("failed to query books by IDs: %w", err)
	}

	return r.collect(rows)
}

// Update overwrites the mutable fields of an existing book.
func (r *bookRepository) Update(ctx context.Context, b *model.Book) error {
	query := `
		UPDATE books SET
			title = $2, author = $3, description = $4, price = $5, discount = $6,
			cover_image = $7, category = $8, stock = $9, isbn = $10, published_year = $11,
			sales_count = $12, is_featured = $13, is_best_seller = $14, is_new_release = $15,
			is_popular = $16, updated_at = $17
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		b.ID, b.Title, b.Author, b.Description, b.Price, b.Discount, b.CoverImage, b.Category,
		b.Stock, b.ISBN, b.PublishedYear, b.SalesCount, b.IsFeatured, b.IsBestSeller,
		b.IsNewRelease, b.IsPopular, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.InvalidInput("a book with this ISBN already exists")
		}
		r.logger.Error().Err(err).Str("book_id", b.ID.String()).Msg("failed to update book")
		return fmt.Errorf("failed to update book: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	return nil
}

// Delete removes a book.
func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to delete book")
		return false, fmt.Errorf("failed to delete book: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns a page of books, newest first.
func (r *bookRepository) List(ctx context.Context, limit, offset int) ([]model.Book, int, error) {
	return r.page(ctx, "", nil, limit, offset)
}

// ListByCategory returns a page of books filed under a category name.
func (r *bookRepository) ListByCategory(ctx context.Context, category string, limit, offset int) ([]model.Book, int, error) {
	return r.page(ctx, "WHERE category = $1", []any{category}, limit, offset)
}

func (r *bookRepository) page(ctx context.Context, where string, args []any, limit, offset int) ([]model.Book, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM books ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count books")
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM books %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		bookColumns, where, n+1, n+2)

	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query books")
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}

	books, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// Search returns books matching the filter, newest first.
func (r *bookRepository) Search(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	var (
		conds []string
		args  []any
	)

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}

	query := `SELECT ` + bookColumns + ` FROM books`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("query", f.Query).Msg("failed to search books")
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	return r.collect(rows)
}

// ListFlagged returns books carrying a curated-list flag.
func (r *bookRepository) ListFlagged(ctx context.Context, flag model.BookFlag, limit int) ([]model.Book, error) {
	column := flag.Column()
	if column == "" {
		return nil, model.InvalidInput("unknown book list: " + string(flag))
	}

	// column comes from a fixed whitelist
	query := fmt.Sprintf(`SELECT %s FROM books WHERE %s ORDER BY sales_count DESC, created_at DESC LIMIT $1`, bookColumns, column)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Str("flag", string(flag)).Msg("failed to query flagged books")
		return nil, fmt.Errorf("failed to query flagged books: %w", err)
	}

	return r.collect(rows)
}

// ListCategoryNames returns the distinct category names used by books.
func (r *bookRepository) ListCategoryNames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM books ORDER BY category`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query book categories")
		return nil, fmt.Errorf("failed to query book categories: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan book categories: %w", err)
	}
	return names, nil
}

// CountByCategory returns book counts per category name, largest first.
func (r *bookRepository) CountByCategory(ctx context.Context, limit int) ([]CategoryBookCount, error) {
	query := `
		SELECT category, COUNT(*)
		FROM books
		GROUP BY category
		ORDER BY COUNT(*) DESC, category
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count books by category")
		return nil, fmt.Errorf("failed to count books by category: %w", err)
	}
	defer rows.Close()

	var counts []CategoryBookCount
	for rows.Next() {
		var c CategoryBookCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// DecrementStock atomically takes quantity units out of stock within tx.
func (r *bookRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE books
		SET stock = stock - $2, sales_count = sales_count + $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("book_id", id.String()).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("book_id", id.String()).
			Int("quantity", quantity).
			Msg("stock decrement rejected")
		return false, nil
	}

	return true, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
