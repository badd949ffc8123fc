package site

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio-backend/internal/config"
	"github.com/devfolio/portfolio-backend/internal/content"
	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/repositories"
	"github.com/devfolio/portfolio-backend/internal/email"
	"github.com/devfolio/portfolio-backend/internal/services"
)

// ---- shared test data -------------------------------------------------------

var paperCols = []string{
	"id", "title", "authors", "date", "url", "description", "type",
	"created_at", "updated_at",
}

func samplePaperRows(n int) *sqlmock.Rows {
	rows := sqlmock.NewRows(paperCols)
	for i := 0; i < n; i++ {
		rows.AddRow(
			int64(i+1), "Attention Is All You Need", "Vaswani et al.",
			"2017-06-12", "https://arxiv.org/abs/1706.03762", nil, "paper",
			time.Now(), time.Now(),
		)
	}
	return rows
}

// ---- router helper ----------------------------------------------------------

func newSiteRouter(t *testing.T, posts content.Index) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	store := db.NewWithDB(mockDB, "sqlite")
	logger := slog.Default()

	if posts == nil {
		posts = content.NewStaticIndex("hello-world")
	}

	papers := NewPaperHandlers(repositories.NewPaperRepository(store), logger)
	views := NewViewHandlers(repositories.NewBlogViewRepository(store), posts, logger)

	r := gin.New()
	r.GET("/api/papers", papers.List)
	r.GET("/api/papers/:id", papers.Get)
	r.GET("/api/blog/:slug/view", views.Get)
	r.POST("/api/blog/:slug/view", views.Record)

	return mock, r
}

// ---- papers listing ---------------------------------------------------------

func TestListPapers_Success(t *testing.T) {
	mock, r := newSiteRouter(t, nil)

	mock.ExpectQuery(`SELECT .* FROM papers.*ORDER BY`).
		WillReturnRows(samplePaperRows(2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM papers`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/papers", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp["total"])
	assert.Equal(t, false, resp["hasMore"])
	assert.Len(t, resp["papers"], 2)
}

func TestListPapers_HasMore(t *testing.T) {
	mock, r := newSiteRouter(t, nil)

	mock.ExpectQuery(`SELECT .* FROM papers.*ORDER BY`).
		WillReturnRows(samplePaperRows(2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM papers`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/papers?limit=2", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["hasMore"])
}

func TestListPapers_TypeFilter(t *testing.T) {
	mock, r := newSiteRouter(t, nil)

	mock.ExpectQuery(`SELECT .* FROM papers.*WHERE type`).
		WithArgs("blog", 50, 0).
		WillReturnRows(samplePaperRows(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM papers WHERE type`).
		WithArgs("blog").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/papers?type=blog", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListPapers_InvalidTypeFilter(t *testing.T) {
	_, r := newSiteRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/papers?type=podcast", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPapers_PaginationRejected(t *testing.T) {
	_, r := newSiteRouter(t, nil)

	for _, query := range []string{"limit=0", "limit=abc", "offset=-1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/papers?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}

func TestGetPaper_Success(t *testing.T) {
	mock, r := newSiteRouter(t, nil)

	mock.ExpectQuery(`SELECT .* FROM papers.*WHERE id`).
		WithArgs(int64(1)).
		WillReturnRows(samplePaperRows(1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/papers/1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetPaper_NotFound(t *testing.T) {
	mock, r := newSiteRouter(t, nil)

	mock.ExpectQuery(`SELECT .* FROM papers.*WHERE id`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(paperCols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/papers/99", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPapers_DatabaseError(t *testing.T) {
	mock, r := newSiteRouter(t, nil)

	mock.ExpectQuery(`SELECT .* FROM papers`).
		WillReturnError(assert.AnError)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/papers", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ---- contact form -----------------------------------------------------------

func TestContactRateLimited_ResponseShape(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	store := db.NewWithDB(mockDB, "sqlite")
	logger := slog.Default()
	limiter := services.NewContactLimiter(
		repositories.NewContactRateLimitRepository(store), 3, 24*time.Hour, logger)
	contact := NewContactHandlers(limiter, email.NewSender(config.EmailConfig{Provider: "log"}, logger), logger)

	r := gin.New()
	r.POST("/api/contact", contact.Submit)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .* FROM contact_rate_limit`).
		WillReturnRows(sqlmock.NewRows([]string{
			"email", "submission_count", "first_submission_at", "last_submission_at", "window_reset_at",
		}).AddRow("visitor@example.com", 3, now.Add(-time.Hour), now, now.Add(2*time.Hour)))

	body := `{"name":"Visitor","email":"visitor@example.com","message":"Hello, I enjoyed the latest post."}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Rate limit exceeded", resp["error"])
	assert.Contains(t, resp["message"], "Try again in about")
	assert.NotEmpty(t, resp["resetAt"])
	seconds, ok := resp["retryAfterSeconds"].(float64)
	require.True(t, ok, "retryAfterSeconds missing: %v", resp)
	assert.Greater(t, seconds, float64(0))
}

// ---- blog views -------------------------------------------------------------

func TestRecordView_Success(t *testing.T) {
	mock, r := newSiteRouter(t, nil)

	mock.ExpectExec(`INSERT INTO blog_views.*ON CONFLICT`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT view_count FROM blog_views WHERE slug`).
		WithArgs("hello-world").
		WillReturnRows(sqlmock.NewRows([]string{"view_count"}).AddRow(int64(4)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/blog/hello-world/view", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hello-world", resp["slug"])
	assert.EqualValues(t, 4, resp["viewCount"])
}

func TestRecordView_UnknownPost(t *testing.T) {
	_, r := newSiteRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/blog/no-such-post/view", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordView_StrippedSlugRejected(t *testing.T) {
	// Nothing survives sanitization of a slug made only of stripped bytes.
	_, r := newSiteRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/blog/%2e%2e/view", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetViewCount_NeverViewed(t *testing.T) {
	mock, r := newSiteRouter(t, nil)

	mock.ExpectQuery(`SELECT view_count FROM blog_views WHERE slug`).
		WithArgs("hello-world").
		WillReturnRows(sqlmock.NewRows([]string{"view_count"}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/blog/hello-world/view", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 0, resp["viewCount"])
}
