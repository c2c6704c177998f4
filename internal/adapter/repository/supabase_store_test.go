package repository_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/adapter/repository"
	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
)

func TestSupabaseStore_Health(t *testing.T) {
	t.Run("healthy remote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/rest/v1/rpc/sync_health", r.URL.Path)
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))
			assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		store := repository.NewSupabaseStore(server.URL, "anon-key", time.Second, zap.NewNop())
		assert.NoError(t, store.Health(context.Background()))
	})

	t.Run("missing schema", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"function sync_health does not exist"}`, http.StatusNotFound)
		}))
		defer server.Close()

		store := repository.NewSupabaseStore(server.URL, "anon-key", time.Second, zap.NewNop())
		assert.ErrorIs(t, store.Health(context.Background()), domainErrors.ErrRemoteRejected)
	})

	t.Run("unreachable remote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		store := repository.NewSupabaseStore(server.URL, "anon-key", time.Second, zap.NewNop())
		assert.ErrorIs(t, store.Health(context.Background()), domainErrors.ErrRemoteUnreachable)
	})
}

func TestSupabaseStore_Upsert(t *testing.T) {
	t.Run("sends merge-duplicates upsert", func(t *testing.T) {
		var gotPath, gotPrefer, gotBody string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotPrefer = r.Header.Get("Prefer")
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		store := repository.NewSupabaseStore(server.URL, "anon-key", time.Second, zap.NewNop())
		err := store.Upsert(context.Background(), "customers",
			[]model.Customer{{ID: "cust-1", Name: "Jan"}})
		require.NoError(t, err)

		assert.Equal(t, "/rest/v1/customers", gotPath)
		assert.Equal(t, "resolution=merge-duplicates,return=minimal", gotPrefer)
		assert.Contains(t, gotBody, `"cust-1"`)
	})

	t.Run("rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"permission denied"}`, http.StatusUnauthorized)
		}))
		defer server.Close()

		store := repository.NewSupabaseStore(server.URL, "anon-key", time.Second, zap.NewNop())
		err := store.Upsert(context.Background(), "customers", []model.Customer{{ID: "cust-1"}})
		assert.ErrorIs(t, err, domainErrors.ErrRemoteRejected)
	})
}

func TestSupabaseStore_SelectAll(t *testing.T) {
	t.Run("decodes rows", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/customers", r.URL.Path)
			assert.Equal(t, "*", r.URL.Query().Get("select"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":"cust-1","name":"Jan"},{"id":"cust-2","name":"Piet"}]`))
		}))
		defer server.Close()

		store := repository.NewSupabaseStore(server.URL, "anon-key", time.Second, zap.NewNop())
		var customers []model.Customer
		require.NoError(t, store.SelectAll(context.Background(), "customers", &customers))
		require.Len(t, customers, 2)
		assert.Equal(t, "Jan", customers[0].Name)
	})

	t.Run("invalid payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		store := repository.NewSupabaseStore(server.URL, "anon-key", time.Second, zap.NewNop())
		var customers []model.Customer
		assert.ErrorIs(t, store.SelectAll(context.Background(), "customers", &customers),
			domainErrors.ErrRemoteRejected)
	})
}
