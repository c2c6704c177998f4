package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flmanager/flmanager/internal/config"
	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/domain/repository"
)

// bulkPutBatchSize bounds local insert statements during pull and restore.
const bulkPutBatchSize = 100

// tableSyncer moves one table between the local store and the remote. The
// remote table names keep the wire schema's camelCase spelling.
type tableSyncer interface {
	name() string
	push(ctx context.Context, db *gorm.DB, remote repository.RemoteStore, chunkSize int, attempt func(func() error) error) error
	pull(ctx context.Context, db *gorm.DB, remote repository.RemoteStore) error
	replace(ctx context.Context, tx *gorm.DB, remote repository.RemoteStore) error
}

type syncTable[T any] struct {
	remoteName string
}

func (t syncTable[T]) name() string { return t.remoteName }

// push uploads the full local table in fixed-size chunks. A chunk that
// ultimately fails surfaces as a SyncError carrying its 1-based index;
// chunks already accepted by the remote stay there.
func (t syncTable[T]) push(ctx context.Context, db *gorm.DB, remote repository.RemoteStore, chunkSize int, attempt func(func() error) error) error {
	var rows []T
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return &domainErrors.SyncError{
			Table: t.remoteName,
			Phase: domainErrors.SyncPhasePush,
			Err:   fmt.Errorf("failed to read local table: %w", err),
		}
	}
	for i := 0; i < len(rows); i += chunkSize {
		end := i + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[i:end]
		if err := attempt(func() error {
			return remote.Upsert(ctx, t.remoteName, chunk)
		}); err != nil {
			return &domainErrors.SyncError{
				Table: t.remoteName,
				Phase: domainErrors.SyncPhasePush,
				Chunk: i/chunkSize + 1,
				Err:   err,
			}
		}
	}
	return nil
}

// pull downloads the remote table and upserts every row locally under its
// original id, so repeated pulls converge instead of duplicating.
func (t syncTable[T]) pull(ctx context.Context, db *gorm.DB, remote repository.RemoteStore) error {
	var rows []T
	if err := remote.SelectAll(ctx, t.remoteName, &rows); err != nil {
		return &domainErrors.SyncError{Table: t.remoteName, Phase: domainErrors.SyncPhasePull, Err: err}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, bulkPutBatchSize).Error; err != nil {
		return &domainErrors.SyncError{
			Table: t.remoteName,
			Phase: domainErrors.SyncPhasePull,
			Err:   fmt.Errorf("failed to store pulled rows: %w", err),
		}
	}
	return nil
}

// replace swaps the local table for the remote copy. The caller wraps all
// replacements in one transaction so a failed restore leaves local data
// untouched.
func (t syncTable[T]) replace(ctx context.Context, tx *gorm.DB, remote repository.RemoteStore) error {
	var rows []T
	if err := remote.SelectAll(ctx, t.remoteName, &rows); err != nil {
		return &domainErrors.SyncError{Table: t.remoteName, Phase: domainErrors.SyncPhaseRestore, Err: err}
	}
	if err := tx.Where("1 = 1").Delete(new(T)).Error; err != nil {
		return &domainErrors.SyncError{
			Table: t.remoteName,
			Phase: domainErrors.SyncPhaseRestore,
			Err:   fmt.Errorf("failed to clear local table: %w", err),
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(rows, bulkPutBatchSize).Error; err != nil {
		return &domainErrors.SyncError{
			Table: t.remoteName,
			Phase: domainErrors.SyncPhaseRestore,
			Err:   fmt.Errorf("failed to load remote rows: %w", err),
		}
	}
	return nil
}

// syncTables is the registry of everything that travels to the cloud. The
// settings row stays local: it holds the remote credentials themselves.
func syncTables() []tableSyncer {
	return []tableSyncer{
		syncTable[model.Customer]{remoteName: "customers"},
		syncTable[model.Subscription]{remoteName: "subscriptions"},
		syncTable[model.TimelineEvent]{remoteName: "timeline"},
		syncTable[model.CountryTemplate]{remoteName: "countryTemplates"},
		syncTable[model.WhatsappTemplate]{remoteName: "whatsappTemplates"},
		syncTable[model.GiftCode]{remoteName: "giftCodes"},
		syncTable[model.WhatsappLog]{remoteName: "whatsappLogs"},
		syncTable[model.Payment]{remoteName: "payments"},
	}
}

// RemoteFactory builds a remote store from the credentials in the settings
// row. Injected so tests can point the engine at a local fake.
type RemoteFactory func(baseURL, apiKey string) repository.RemoteStore

// SyncService pushes and pulls the full dataset against the configured
// remote store. Push failures leave already-uploaded chunks in place; the
// result reports exactly how far the sync got.
type SyncService struct {
	db        *gorm.DB
	cfg       config.SyncConfig
	newRemote RemoteFactory
	logger    *zap.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(db *gorm.DB, cfg config.SyncConfig, newRemote RemoteFactory, logger *zap.Logger) *SyncService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 100
	}
	// A negative retry count would wrap to a huge uint64 in attempt.
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &SyncService{db: db, cfg: cfg, newRemote: newRemote, logger: logger}
}

func (s *SyncService) remote(ctx context.Context) (repository.RemoteStore, error) {
	var settings model.AppSettings
	if err := s.db.WithContext(ctx).First(&settings, "id = ?", model.SettingsID).Error; err != nil {
		return nil, domainErrors.ErrSettingsNotFound
	}
	if settings.SupabaseURL == "" || settings.SupabaseAnonKey == "" {
		return nil, domainErrors.ErrRemoteNotConfigured
	}
	return s.newRemote(settings.SupabaseURL, settings.SupabaseAnonKey), nil
}

// attempt retries a remote call with exponential backoff. Rejections are
// permanent: the remote answered, retrying the same payload cannot help.
func (s *SyncService) attempt(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	if s.cfg.InitialBackoff > 0 {
		policy.InitialInterval = s.cfg.InitialBackoff
	}
	retries := uint64(s.cfg.MaxRetries)
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, domainErrors.ErrRemoteUnreachable) {
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx))
}

// FullSync runs a complete push-then-pull cycle: every local table is
// uploaded in chunks, then every remote table is merged back in. Only a
// fully successful cycle stamps last_sync.
func (s *SyncService) FullSync(ctx context.Context) error {
	remote, err := s.remote(ctx)
	if err != nil {
		return err
	}

	if err := s.attempt(ctx, func() error { return remote.Health(ctx) }); err != nil {
		return &domainErrors.SyncError{Phase: domainErrors.SyncPhaseHealth, Err: err}
	}

	var completed []string
	for _, table := range syncTables() {
		if err := table.push(ctx, s.db, remote, s.cfg.ChunkSize, func(op func() error) error {
			return s.attempt(ctx, op)
		}); err != nil {
			s.logger.Error("Sync push failed",
				zap.String("table", table.name()),
				zap.Strings("completed", completed),
				zap.Error(err))
			return &domainErrors.PartialSyncError{Completed: completed, Failed: err.(*domainErrors.SyncError)}
		}
		completed = append(completed, table.name())
	}

	for _, table := range syncTables() {
		if err := table.pull(ctx, s.db, remote); err != nil {
			s.logger.Error("Sync pull failed", zap.String("table", table.name()), zap.Error(err))
			return &domainErrors.PartialSyncError{Completed: completed, Failed: err.(*domainErrors.SyncError)}
		}
	}

	if err := s.stampLastSync(ctx); err != nil {
		return err
	}
	s.logger.Info("Full sync completed", zap.Int("tables", len(completed)))
	return nil
}

// RestoreFromCloud replaces the entire local dataset with the remote copy.
// All tables are swapped in a single transaction: a mid-restore failure
// rolls everything back instead of leaving a half-replaced store.
func (s *SyncService) RestoreFromCloud(ctx context.Context) error {
	remote, err := s.remote(ctx)
	if err != nil {
		return err
	}

	if err := s.attempt(ctx, func() error { return remote.Health(ctx) }); err != nil {
		return &domainErrors.SyncError{Phase: domainErrors.SyncPhaseHealth, Err: err}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range syncTables() {
			if err := table.replace(ctx, tx, remote); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Restore from cloud failed", zap.Error(err))
		return err
	}

	if err := s.stampLastSync(ctx); err != nil {
		return err
	}
	s.logger.Info("Restore from cloud completed")
	return nil
}

func (s *SyncService) stampLastSync(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Model(&model.AppSettings{}).
		Where("id = ?", model.SettingsID).
		Update("last_sync", nowMillis()).Error; err != nil {
		return fmt.Errorf("failed to stamp last sync: %w", err)
	}
	return nil
}
