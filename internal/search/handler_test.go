package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/database"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/search"
)

func setupTestRouter(t *testing.T, svc *search.Service) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	search.NewHandler(svc, logger.NewNop()).RegisterRoutes(router)
	return router
}

func serve(t *testing.T, router *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, target, http.NoBody)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Search(t *testing.T) {
	t.Parallel()

	store := &fakeCandidates{candidates: []database.Candidate{candidate(3, 0, "refunds", 1, 0)}}
	router := setupTestRouter(t, search.NewService(&fixedEmbedder{vector: []float32{1, 0}}, store, nil, search.Config{}))

	w := serve(t, router, "/api/v1/search?q=refund&platform=acme&category=billing&limit=5")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp search.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Articles, 1)
	assert.Equal(t, int64(3), resp.Articles[0].ID)
	assert.Equal(t, []string{"refunds"}, resp.Articles[0].Snippets)
	assert.Equal(t, database.SearchFilter{Platform: "acme", Category: "billing"}, store.gotFilter)
}

func TestHandler_SearchBadRequests(t *testing.T) {
	t.Parallel()

	router := setupTestRouter(t, search.NewService(&fixedEmbedder{}, &fakeCandidates{}, nil, search.Config{}))

	assert.Equal(t, http.StatusBadRequest, serve(t, router, "/api/v1/search").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, router, "/api/v1/search?q=x&limit=abc").Code)
}

func TestHandler_SearchHidesInternalErrors(t *testing.T) {
	t.Parallel()

	svc := search.NewService(&fixedEmbedder{err: errors.New("openai: invalid api key sk-123")}, &fakeCandidates{}, nil, search.Config{})
	w := serve(t, setupTestRouter(t, svc), "/api/v1/search?q=refund")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestHandler_GetArticle(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{bySlug: map[string]*domain.Article{
		"how-do-refunds-work": {ID: 9, Slug: "how-do-refunds-work", Question: "How do refunds work?"},
	}}
	router := setupTestRouter(t, search.NewService(&fixedEmbedder{}, &fakeCandidates{}, articles, search.Config{}))

	w := serve(t, router, "/api/v1/articles/how-do-refunds-work")
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.Article
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "How do refunds work?", got.Question)

	assert.Equal(t, http.StatusNotFound, serve(t, router, "/api/v1/articles/missing").Code)
}
