package usecase_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flmanager/flmanager/internal/config"
	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/domain/repository"
	"github.com/flmanager/flmanager/internal/usecase"
)

// fakeRemote is an in-memory remote store. Rows travel through JSON, the same
// shape the real backend sees.
type fakeRemote struct {
	mu          sync.Mutex
	tables      map[string]map[string]json.RawMessage
	healthErr   error
	upsertErr   map[string]error
	failFirst   map[string]int
	upsertCalls map[string]int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tables:      make(map[string]map[string]json.RawMessage),
		upsertErr:   make(map[string]error),
		failFirst:   make(map[string]int),
		upsertCalls: make(map[string]int),
	}
}

func (f *fakeRemote) Health(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthErr
}

func (f *fakeRemote) Upsert(ctx context.Context, table string, records any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upsertCalls[table]++
	if err := f.upsertErr[table]; err != nil {
		return err
	}
	if f.failFirst[table] > 0 {
		f.failFirst[table]--
		return domainErrors.ErrRemoteUnreachable
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	var rows []map[string]any
	if err := json.Unmarshal(payload, &rows); err != nil {
		return err
	}

	if f.tables[table] == nil {
		f.tables[table] = make(map[string]json.RawMessage)
	}
	for _, row := range rows {
		id, _ := row["id"].(string)
		raw, err := json.Marshal(row)
		if err != nil {
			return err
		}
		f.tables[table][id] = raw
	}
	return nil
}

func (f *fakeRemote) SelectAll(ctx context.Context, table string, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := make([]json.RawMessage, 0, len(f.tables[table]))
	for _, raw := range f.tables[table] {
		rows = append(rows, raw)
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dest)
}

// seed pre-loads a remote table with model rows.
func (f *fakeRemote) seed(t *testing.T, table string, records any) {
	t.Helper()
	require.NoError(t, f.Upsert(context.Background(), table, records))
}

func (f *fakeRemote) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

var _ repository.RemoteStore = (*fakeRemote)(nil)

func newSyncService(db *gorm.DB, remote *fakeRemote, chunkSize int) *usecase.SyncService {
	cfg := config.SyncConfig{
		ChunkSize:      chunkSize,
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
	}
	factory := func(baseURL, apiKey string) repository.RemoteStore { return remote }
	return usecase.NewSyncService(db, cfg, factory, zap.NewNop())
}

func seedSyncSettings(t *testing.T, db *gorm.DB) {
	t.Helper()
	settings := testSettings()
	settings.SupabaseURL = "https://remote.test"
	settings.SupabaseAnonKey = "anon-key"
	require.NoError(t, db.Create(settings).Error)
}

func TestSyncService_FullSync(t *testing.T) {
	db := newTestDB(t)
	remote := newFakeRemote()
	service := newSyncService(db, remote, 100)
	ctx := context.Background()

	seedSyncSettings(t, db)
	require.NoError(t, db.Create(&model.Customer{ID: "local-1", Name: "Lokaal"}).Error)
	remote.seed(t, "customers", []model.Customer{{ID: "remote-1", Name: "Cloud"}})

	require.NoError(t, service.FullSync(ctx))

	// Push uploaded the local row, pull merged the remote-only row in.
	assert.Equal(t, 2, remote.count("customers"))
	var customers []model.Customer
	require.NoError(t, db.Order("id").Find(&customers).Error)
	require.Len(t, customers, 2)
	assert.Equal(t, "local-1", customers[0].ID)
	assert.Equal(t, "remote-1", customers[1].ID)

	var settings model.AppSettings
	require.NoError(t, db.First(&settings, "id = ?", model.SettingsID).Error)
	assert.NotZero(t, settings.LastSync)

	t.Run("second run converges", func(t *testing.T) {
		require.NoError(t, service.FullSync(ctx))
		assert.Equal(t, 2, remote.count("customers"))
		var count int64
		require.NoError(t, db.Model(&model.Customer{}).Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})
}

func TestSyncService_FullSync_Chunking(t *testing.T) {
	db := newTestDB(t)
	remote := newFakeRemote()
	service := newSyncService(db, remote, 2)
	ctx := context.Background()

	seedSyncSettings(t, db)
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		require.NoError(t, db.Create(&model.Customer{ID: id, Name: id}).Error)
	}

	require.NoError(t, service.FullSync(ctx))

	assert.Equal(t, 5, remote.count("customers"))
	assert.Equal(t, 3, remote.upsertCalls["customers"])
}

func TestSyncService_FullSync_NotConfigured(t *testing.T) {
	db := newTestDB(t)
	service := newSyncService(db, newFakeRemote(), 100)
	ctx := context.Background()

	t.Run("no settings row", func(t *testing.T) {
		assert.ErrorIs(t, service.FullSync(ctx), domainErrors.ErrSettingsNotFound)
	})

	t.Run("empty credentials", func(t *testing.T) {
		seedSettings(t, db)
		assert.ErrorIs(t, service.FullSync(ctx), domainErrors.ErrRemoteNotConfigured)
	})
}

func TestSyncService_FullSync_PartialFailure(t *testing.T) {
	db := newTestDB(t)
	remote := newFakeRemote()
	service := newSyncService(db, remote, 100)
	ctx := context.Background()

	seedSyncSettings(t, db)
	require.NoError(t, db.Create(&model.Customer{ID: "c1", Name: "Jan"}).Error)
	require.NoError(t, db.Create(&model.Subscription{
		ID: "s1", CustomerID: "c1", Label: "Stream", Status: model.SubscriptionStatusActive,
	}).Error)
	remote.upsertErr["subscriptions"] = domainErrors.ErrRemoteRejected

	err := service.FullSync(ctx)
	var partial *domainErrors.PartialSyncError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []string{"customers"}, partial.Completed)
	assert.Equal(t, "subscriptions", partial.Failed.Table)
	assert.Equal(t, domainErrors.SyncPhasePush, partial.Failed.Phase)
	assert.Equal(t, 1, partial.Failed.Chunk)

	// A rejection is permanent: no retries were spent on it.
	assert.Equal(t, 1, remote.upsertCalls["subscriptions"])

	// The cycle did not complete, so last_sync stays unset.
	var settings model.AppSettings
	require.NoError(t, db.First(&settings, "id = ?", model.SettingsID).Error)
	assert.Zero(t, settings.LastSync)
}

func TestSyncService_FullSync_RetriesUnreachable(t *testing.T) {
	db := newTestDB(t)
	remote := newFakeRemote()
	service := newSyncService(db, remote, 100)
	ctx := context.Background()

	seedSyncSettings(t, db)
	require.NoError(t, db.Create(&model.Customer{ID: "c1", Name: "Jan"}).Error)
	// Two transient failures, then the remote comes back.
	remote.failFirst["customers"] = 2

	require.NoError(t, service.FullSync(ctx))
	assert.Equal(t, 3, remote.upsertCalls["customers"])
	assert.Equal(t, 1, remote.count("customers"))
}

func TestSyncService_FullSync_NegativeRetriesMeansNone(t *testing.T) {
	db := newTestDB(t)
	remote := newFakeRemote()
	cfg := config.SyncConfig{
		ChunkSize:      100,
		MaxRetries:     -1,
		InitialBackoff: time.Millisecond,
	}
	factory := func(baseURL, apiKey string) repository.RemoteStore { return remote }
	service := usecase.NewSyncService(db, cfg, factory, zap.NewNop())
	ctx := context.Background()

	seedSyncSettings(t, db)
	require.NoError(t, db.Create(&model.Customer{ID: "c1", Name: "Jan"}).Error)
	remote.upsertErr["customers"] = domainErrors.ErrRemoteUnreachable

	err := service.FullSync(ctx)
	var partial *domainErrors.PartialSyncError
	require.ErrorAs(t, err, &partial)
	assert.ErrorIs(t, err, domainErrors.ErrRemoteUnreachable)

	// A misconfigured retry count clamps to zero instead of retrying forever.
	assert.Equal(t, 1, remote.upsertCalls["customers"])
}

func TestSyncService_FullSync_HealthFailure(t *testing.T) {
	db := newTestDB(t)
	remote := newFakeRemote()
	service := newSyncService(db, remote, 100)
	ctx := context.Background()

	seedSyncSettings(t, db)
	remote.healthErr = domainErrors.ErrRemoteRejected

	err := service.FullSync(ctx)
	var syncErr *domainErrors.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, domainErrors.SyncPhaseHealth, syncErr.Phase)
	assert.ErrorIs(t, err, domainErrors.ErrRemoteRejected)
}

func TestSyncService_RestoreFromCloud(t *testing.T) {
	db := newTestDB(t)
	remote := newFakeRemote()
	service := newSyncService(db, remote, 100)
	ctx := context.Background()

	seedSyncSettings(t, db)
	require.NoError(t, db.Create(&model.Customer{ID: "local-only", Name: "Weg"}).Error)
	remote.seed(t, "customers", []model.Customer{{ID: "cloud-1", Name: "Cloud"}})
	remote.seed(t, "subscriptions", []model.Subscription{{
		ID: "cloud-sub", CustomerID: "cloud-1", Label: "Stream",
		Status: model.SubscriptionStatusActive,
	}})

	require.NoError(t, service.RestoreFromCloud(ctx))

	// The local dataset is the remote copy now.
	var customers []model.Customer
	require.NoError(t, db.Find(&customers).Error)
	require.Len(t, customers, 1)
	assert.Equal(t, "cloud-1", customers[0].ID)

	var subs []model.Subscription
	require.NoError(t, db.Find(&subs).Error)
	require.Len(t, subs, 1)

	// Settings stay local: credentials and PIN survive a restore.
	var settings model.AppSettings
	require.NoError(t, db.First(&settings, "id = ?", model.SettingsID).Error)
	assert.Equal(t, "https://remote.test", settings.SupabaseURL)
	assert.NotZero(t, settings.LastSync)
}
