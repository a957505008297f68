//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/model"
	"bookstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// sourceBook is one entry of the catalogue export.
type sourceBook struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
	ImageURL      string          `json:"imageUrl"`
	Category      string          `json:"category"`
	PublishedDate string          `json:"publishedDate"`
}

// Loads a JSON catalogue export into the books table. Every imported book
// gets the same stock and random curated-list flags so the storefront has
// something to show.
//
//	go run scripts/import_books.go -file books_database.json -replace
func main() {
	file := flag.String("file", "books_database.json", "catalogue export to import")
	stock := flag.Int("stock", 100, "stock given to every imported book")
	replace := flag.Bool("replace", false, "delete existing books first")
	flag.Parse()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}
	var source []sourceBook
	if err := json.Unmarshal(data, &source); err != nil {
		log.Fatalf("Failed to parse %s: %v", *file, err)
	}
	fmt.Printf("Read %d books from %s\n", len(source), *file)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	if *replace {
		tag, err := pool.Exec(ctx, "DELETE FROM books")
		if err != nil {
			log.Fatalf("Failed to delete books: %v", err)
		}
		fmt.Printf("Deleted %d existing books\n", tag.RowsAffected())
	}

	repo := repository.NewBookRepository(pool, logger)
	imported, skipped := 0, 0
	for _, src := range source {
		book := toBook(src, *stock)
		if err := repo.Create(ctx, book); err != nil {
			if _, ok := model.AsDomainError(err); ok {
				skipped++
				continue
			}
			log.Fatalf("Failed to import %q: %v", src.Title, err)
		}
		imported++
	}

	fmt.Printf("Imported %d books, skipped %d duplicates\n", imported, skipped)
}

func toBook(src sourceBook, stock int) *model.Book {
	now := time.Now().UTC()
	year := now.Year()
	if published, err := time.Parse("2006-01-02", src.PublishedDate); err == nil {
		year = published.Year()
	}

	isbn := src.ID
	if isbn == "" {
		isbn = uuid.NewString()
	}

	return &model.Book{
		ID:            uuid.New(),
		Title:         src.Title,
		Author:        src.Author,
		Description:   src.Description,
		Price:         src.Price,
		Discount:      src.Discount,
		CoverImage:    src.ImageURL,
		Category:      src.Category,
		Stock:         stock,
		ISBN:          isbn,
		PublishedYear: year,
		SalesCount:    rand.IntN(200),
		IsFeatured:    rand.Float64() > 0.5,
		IsBestSeller:  rand.Float64() > 0.7,
		IsNewRelease:  rand.Float64() > 0.7,
		IsPopular:     rand.Float64() > 0.6,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
