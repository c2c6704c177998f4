package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	domainRepo "github.com/flmanager/flmanager/internal/domain/repository"
)

// SupabaseStore implements the remote store against the Supabase REST API.
// Every table row travels in its native JSON shape; upserts rely on
// merge-duplicates resolution so pushing the same records twice is a no-op.
type SupabaseStore struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewSupabaseStore creates a new Supabase-backed remote store
func NewSupabaseStore(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) domainRepo.RemoteStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SupabaseStore{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// Health calls the sync_health RPC to validate connectivity and schema
// readiness before any data transfer begins.
func (s *SupabaseStore) Health(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/rest/v1/rpc/sync_health", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrRemoteUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: health check returned status %d: %s",
			domainErrors.ErrRemoteRejected, resp.StatusCode, string(body))
	}
	return nil
}

// Upsert inserts-or-updates records into the named table.
func (s *SupabaseStore) Upsert(ctx context.Context, table string, records any) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal records for %s: %w", table, err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, url.PathEscape(table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create upsert request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrRemoteUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Warn("Remote upsert rejected",
			zap.String("table", table),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("%w: upsert into %s returned status %d: %s",
			domainErrors.ErrRemoteRejected, table, resp.StatusCode, string(body))
	}
	return nil
}

// SelectAll fetches the full remote table into dest.
func (s *SupabaseStore) SelectAll(ctx context.Context, table string, dest any) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=*", s.baseURL, url.PathEscape(table))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create select request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrRemoteUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: select from %s returned status %d: %s",
			domainErrors.ErrRemoteRejected, table, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v",
			domainErrors.ErrRemoteRejected, table, err)
	}
	return nil
}

func (s *SupabaseStore) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
