package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"user-profile-service/internal/domain"
	"user-profile-service/internal/handler"
	"user-profile-service/internal/usecase"
	"user-profile-service/pkg/id"
	"user-profile-service/pkg/middleware"
	"user-profile-service/pkg/xerrors"
)

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *mockProfileRepository) Upsert(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *mockProfileRepository) CreateIfAbsent(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, bool, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.UserProfile), args.Bool(1), args.Error(2)
}

// withSubject stands in for the auth middleware: the handlers only ever
// see a pre-validated subject in the context.
func withSubject(subject string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.ContextUserID, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(t *testing.T, subject string) (http.Handler, *mockProfileRepository) {
	t.Helper()
	sf, err := id.NewSnowflake(2)
	require.NoError(t, err)
	repo := new(mockProfileRepository)
	h := handler.NewUserHandler(usecase.NewUserUsecase(repo, sf))

	r := chi.NewRouter()
	r.Route("/api/users", func(api chi.Router) {
		api.Use(withSubject(subject))
		api.Get("/me", h.HandleMe)
		api.Post("/save", h.HandleSaveUser)
		api.Put("/{userId}", h.HandleUpdateUser)
	})
	return r, repo
}

func decodeProfile(t *testing.T, rec *httptest.ResponseRecorder) domain.UserProfile {
	t.Helper()
	var p domain.UserProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	return p
}

func TestHandleMe(t *testing.T) {
	t.Run("returns profile for the token subject", func(t *testing.T) {
		router, repo := newTestRouter(t, "u1")
		repo.On("GetByUserID", mock.Anything, "u1").Return(&domain.UserProfile{
			ID: "100", UserID: "u1", Email: "a@x.com", Preferences: map[string]string{},
		}, nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeProfile(t, rec)
		assert.Equal(t, "u1", got.UserID)
	})

	t.Run("404 with error body when no profile", func(t *testing.T) {
		router, repo := newTestRouter(t, "ghost")
		repo.On("GetByUserID", mock.Anything, "ghost").Return(nil, xerrors.ErrUserNotFound).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
	})
}

func TestHandleSaveUser(t *testing.T) {
	t.Run("forces user id to the token subject", func(t *testing.T) {
		router, repo := newTestRouter(t, "u1")
		repo.On("GetByUserID", mock.Anything, "u1").Return(nil, xerrors.ErrUserNotFound).Once()
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.UserProfile) bool {
			// Body claimed a different subject and a preset id; both are
			// overridden server-side.
			return p.UserID == "u1" && p.ID != "999"
		})).Return(&domain.UserProfile{ID: "100", UserID: "u1", Email: "a@x.com"}, nil).Once()

		body := `{"id":"999","userId":"intruder","email":"a@x.com"}`
		req := httptest.NewRequest(http.MethodPost, "/api/users/save", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeProfile(t, rec)
		assert.Equal(t, "u1", got.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("save then me returns the saved profile", func(t *testing.T) {
		router, repo := newTestRouter(t, "u1")

		var saved *domain.UserProfile
		repo.On("GetByUserID", mock.Anything, "u1").Return(nil, xerrors.ErrUserNotFound).Once()
		repo.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*domain.UserProfile)
		}).Return(&domain.UserProfile{ID: "100", UserID: "u1", Email: "a@x.com"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/users/save", strings.NewReader(`{"email":"a@x.com"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, saved)
		assert.Equal(t, "u1", saved.UserID)

		repo.On("GetByUserID", mock.Anything, "u1").Return(saved, nil).Once()
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeProfile(t, rec)
		assert.Equal(t, "u1", got.UserID)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		router, _ := newTestRouter(t, "u1")

		req := httptest.NewRequest(http.MethodPost, "/api/users/save", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleUpdateUser(t *testing.T) {
	t.Run("mismatched subject gets 403 and the store is untouched", func(t *testing.T) {
		router, repo := newTestRouter(t, "u1")

		body := `{"email":"evil@x.com"}`
		req := httptest.NewRequest(http.MethodPut, "/api/users/victim", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Body.String())
		repo.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("404 when the subject has no profile", func(t *testing.T) {
		router, repo := newTestRouter(t, "u1")
		repo.On("GetByUserID", mock.Anything, "u1").Return(nil, xerrors.ErrUserNotFound).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/users/u1", strings.NewReader(`{"email":"a@x.com"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("matching subject updates and returns the profile", func(t *testing.T) {
		router, repo := newTestRouter(t, "u1")
		existing := &domain.UserProfile{
			ID: "100", UserID: "u1", Email: "old@x.com",
			Preferences: map[string]string{"a": "1", "b": "2"},
		}
		repo.On("GetByUserID", mock.Anything, "u1").Return(existing, nil).Once()
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.UserProfile) bool {
			return p.Email == "new@x.com" &&
				assert.ObjectsAreEqual(map[string]string{"c": "3"}, p.Preferences)
		})).Return(existing, nil).Once()

		body := `{"email":"new@x.com","preferences":{"c":"3"}}`
		req := httptest.NewRequest(http.MethodPut, "/api/users/u1", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		repo.AssertExpectations(t)
	})
}
