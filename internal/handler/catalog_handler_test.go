package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBookHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	validBody := `{"title":"Dune","author":"Frank Herbert","description":"Spice","price":"250000","discount":"10",` +
		`"coverImage":"dune.jpg","category":"Science Fiction","stock":5,"isbn":"9780441172719","publishedYear":1965}`

	tests := []struct {
		name           string
		body           string
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", body: validBody, expectedStatus: http.StatusCreated, expectService: true},
		{name: "Duplicate ISBN", body: validBody, mockError: model.InvalidInput("a book with this ISBN already exists"), expectedStatus: http.StatusBadRequest, expectService: true},
		{name: "Missing title", body: `{"author":"Frank Herbert"}`, expectedStatus: http.StatusBadRequest},
		{name: "Negative stock", body: `{"title":"Dune","author":"A","description":"B","coverImage":"c","category":"d","isbn":"e","publishedYear":1965,"stock":-1}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockBookService)
			handler := NewBookHandler(mockService, logger)

			if tt.expectService {
				var ret *model.Book
				if tt.mockError == nil {
					ret = &model.Book{ID: uuid.New(), Title: "Dune"}
				}
				mockService.On("Create", mock.Anything, mock.AnythingOfType("*model.BookRequest")).Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestBookHandler_GetByID(t *testing.T) {
	bookID := uuid.New()
	mockService := new(MockBookService)
	handler := NewBookHandler(mockService, zerolog.Nop())
	mockService.On("GetByID", mock.Anything, bookID).Return(nil, model.ErrBookNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/books/"+bookID.String(), nil)
	req.SetPathValue("id", bookID.String())
	w := httptest.NewRecorder()

	handler.GetByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "book not found")
	mockService.AssertExpectations(t)
}

func TestBookHandler_Search(t *testing.T) {
	logger := zerolog.Nop()
	low := decimal.RequireFromString("100000")
	high := decimal.RequireFromString("300000")

	tests := []struct {
		name           string
		query          string
		expectedFilter *model.BookFilter
		expectedStatus int
	}{
		{
			name:           "Text and category",
			query:          "?q=dune&category=Science+Fiction",
			expectedFilter: &model.BookFilter{Query: "dune", Category: "Science Fiction"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Price range",
			query:          "?minPrice=100000&maxPrice=300000",
			expectedFilter: &model.BookFilter{MinPrice: &low, MaxPrice: &high},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Malformed price",
			query:          "?minPrice=cheap",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockBookService)
			handler := NewBookHandler(mockService, logger)

			if tt.expectedFilter != nil {
				mockService.On("Search", mock.Anything, mock.MatchedBy(func(f model.BookFilter) bool {
					return f.Query == tt.expectedFilter.Query &&
						f.Category == tt.expectedFilter.Category &&
						equalPrice(f.MinPrice, tt.expectedFilter.MinPrice) &&
						equalPrice(f.MaxPrice, tt.expectedFilter.MaxPrice)
				})).Return([]model.Book{}, nil)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/books/search"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.Search(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func equalPrice(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func TestBookHandler_Flagged(t *testing.T) {
	mockService := new(MockBookService)
	handler := NewBookHandler(mockService, zerolog.Nop())
	mockService.On("ListFlagged", mock.Anything, model.FlagBestSeller, 5).Return([]model.Book{{Title: "Dune"}}, nil)

	w := httptest.NewRecorder()
	handler.Flagged(model.FlagBestSeller)(w, httptest.NewRequest(http.MethodGet, "/api/books/best-sellers?limit=5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookHandler_ListAndDelete(t *testing.T) {
	bookID := uuid.New()
	mockService := new(MockBookService)
	handler := NewBookHandler(mockService, zerolog.Nop())

	mockService.On("List", mock.Anything, 1, 10).Return(model.NewBookPage([]model.Book{}, 1, 10, 0), nil)
	mockService.On("Delete", mock.Anything, bookID).Return(nil)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"currentPage":1`)

	req := httptest.NewRequest(http.MethodDelete, "/api/books/"+bookID.String(), nil)
	req.SetPathValue("id", bookID.String())
	w = httptest.NewRecorder()
	handler.Delete(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "book deleted")

	mockService.AssertExpectations(t)
}

func TestCategoryHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", body: `{"name":"Science Fiction"}`, expectedStatus: http.StatusCreated, expectService: true},
		{name: "Unknown parent", body: `{"name":"Space Opera","parentCategory":"` + uuid.NewString() + `"}`, mockError: model.ErrCategoryNotFound, expectedStatus: http.StatusNotFound, expectService: true},
		{name: "Missing name", body: `{"description":"no name"}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCategoryService)
			handler := NewCategoryHandler(mockService, zerolog.Nop())

			if tt.expectService {
				var ret *model.Category
				if tt.mockError == nil {
					ret = &model.Category{ID: uuid.New(), Name: "Science Fiction", Slug: "science-fiction", IsActive: true}
				}
				mockService.On("Create", mock.Anything, mock.AnythingOfType("*model.CategoryRequest")).Return(ret, tt.mockError)
			}

			w := httptest.NewRecorder()
			handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestCategoryHandler_Books(t *testing.T) {
	mockService := new(MockCategoryService)
	handler := NewCategoryHandler(mockService, zerolog.Nop())

	category := &model.Category{ID: uuid.New(), Name: "Science Fiction", Slug: "science-fiction"}
	mockService.On("Books", mock.Anything, "science-fiction", 2, 5).Return(&model.CategoryBooks{
		Category: category,
		BookPage: model.NewBookPage([]model.Book{}, 2, 5, 7),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/categories/slug/science-fiction/books?page=2&limit=5", nil)
	req.SetPathValue("slug", "science-fiction")
	w := httptest.NewRecorder()

	handler.Books(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"science-fiction"`)
	assert.Contains(t, w.Body.String(), `"totalBooks":7`)
	mockService.AssertExpectations(t)
}

func TestCategoryHandler_Delete(t *testing.T) {
	categoryID := uuid.New()
	mockService := new(MockCategoryService)
	handler := NewCategoryHandler(mockService, zerolog.Nop())
	mockService.On("Delete", mock.Anything, categoryID).Return(model.InvalidInput("category has subcategories"))

	req := httptest.NewRequest(http.MethodDelete, "/api/categories/"+categoryID.String(), nil)
	req.SetPathValue("id", categoryID.String())
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestCategoryHandler_ListSub(t *testing.T) {
	mockService := new(MockCategoryService)
	handler := NewCategoryHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/categories/sub/xyz", nil)
	req.SetPathValue("parentId", "xyz")
	w := httptest.NewRecorder()

	handler.ListSub(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ListSub", mock.Anything, mock.Anything)
}
