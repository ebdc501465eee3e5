package cache

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
)

type testPayload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func setupTestCache(t *testing.T) *DB {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	ValidTableNames["test_cache"] = true
	t.Cleanup(func() {
		delete(ValidTableNames, "test_cache")
	})

	dbPath := t.TempDir() + "/test_cache.db"

	cacheDB, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to create cache database: %v", err)
	}
	t.Cleanup(func() { _ = cacheDB.Close() })

	testSchema := `
		CREATE TABLE IF NOT EXISTS test_cache (
			cache_key TEXT PRIMARY KEY NOT NULL,
			data TEXT NOT NULL,
			cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if err := cacheDB.CreateTable(testSchema); err != nil {
		t.Fatalf("Failed to create test table: %v", err)
	}

	viper.Set("cache.ttl", "1h")

	return cacheDB
}

func withGlobalCache(t *testing.T, cacheDB *DB) {
	t.Helper()

	oldCache := globalCache
	globalCache = cacheDB
	globalCacheOnce = sync.Once{}
	globalCacheOnce.Do(func() {})

	t.Cleanup(func() {
		globalCache = oldCache
		globalCacheOnce = sync.Once{}
	})
}

func setCachedAt(t *testing.T, cacheDB *DB, tableName, key string, at time.Time) {
	t.Helper()

	if _, err := cacheDB.db.Exec("UPDATE "+tableName+" SET cached_at = ? WHERE cache_key = ?", at.UTC(), key); err != nil {
		t.Fatalf("Failed to update cached_at: %v", err)
	}
}

func TestGetOrFetch_CacheHit(t *testing.T) {
	cacheDB := setupTestCache(t)
	withGlobalCache(t, cacheDB)

	testKey := "test-key"
	if err := cacheDB.Set("test_cache", testKey, `{"id":1,"name":"Test"}`); err != nil {
		t.Fatalf("Failed to pre-populate cache: %v", err)
	}

	fetchCalled := false
	result, fromCache, err := GetOrFetch("test_cache", testKey, func() (testPayload, error) {
		fetchCalled = true
		return testPayload{}, nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !fromCache {
		t.Error("Expected fromCache to be true")
	}
	if fetchCalled {
		t.Error("Expected fetch function not to be called")
	}
	if result.ID != 1 || result.Name != "Test" {
		t.Errorf("Unexpected cached result %+v", result)
	}
}

func TestGetOrFetch_CacheMiss(t *testing.T) {
	cacheDB := setupTestCache(t)
	withGlobalCache(t, cacheDB)

	testKey := "test-key"
	expected := testPayload{ID: 2, Name: "Fetched"}

	fetchCalled := 0
	fetchFunc := func() (testPayload, error) {
		fetchCalled++
		return expected, nil
	}

	result, fromCache, err := GetOrFetch("test_cache", testKey, fetchFunc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache {
		t.Error("Expected fromCache to be false")
	}
	if fetchCalled != 1 {
		t.Errorf("Expected fetch function to be called once, got %d", fetchCalled)
	}
	if result != expected {
		t.Errorf("Expected %+v, got %+v", expected, result)
	}

	if !cacheDB.Exists("test_cache", testKey) {
		t.Error("Expected cache entry to be created")
	}

	// Second call should hit cache and avoid fetch
	result, fromCache, err = GetOrFetch("test_cache", testKey, fetchFunc)
	if err != nil {
		t.Fatalf("Expected no error on second call, got %v", err)
	}
	if !fromCache {
		t.Error("Expected second call to return from cache")
	}
	if fetchCalled != 1 {
		t.Errorf("Expected fetch not to be called again, got %d calls", fetchCalled)
	}
	if result != expected {
		t.Errorf("Expected %+v from cache, got %+v", expected, result)
	}
}

func TestGetOrFetch_RespectsTTLExpiration(t *testing.T) {
	cacheDB := setupTestCache(t)
	withGlobalCache(t, cacheDB)

	testKey := "test-key"
	fresh := testPayload{ID: 2, Name: "Fresh"}

	if err := cacheDB.Set("test_cache", testKey, `{"id":1,"name":"stale"}`); err != nil {
		t.Fatalf("Failed to seed stale cache: %v", err)
	}
	setCachedAt(t, cacheDB, "test_cache", testKey, time.Now().Add(-2*time.Hour))

	viper.Set("cache.ttl", "1h")

	fetchCalled := 0
	result, fromCache, err := GetOrFetch("test_cache", testKey, func() (testPayload, error) {
		fetchCalled++
		return fresh, nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache {
		t.Fatal("Expected cache miss due to TTL expiration")
	}
	if fetchCalled != 1 {
		t.Fatalf("Expected fetch to be called once, got %d", fetchCalled)
	}
	if result != fresh {
		t.Fatalf("Expected fresh data, got %+v", result)
	}

	cached, cachedHit, err := cacheDB.Get("test_cache", testKey, time.Hour)
	if err != nil {
		t.Fatalf("Expected cached data to be stored, got error %v", err)
	}
	if !cachedHit {
		t.Fatal("Expected cached entry after refresh")
	}

	var cachedData testPayload
	if err := json.Unmarshal([]byte(cached), &cachedData); err != nil {
		t.Fatalf("Failed to unmarshal cached data: %v", err)
	}
	if cachedData != fresh {
		t.Fatalf("Expected cached data %+v, got %+v", fresh, cachedData)
	}
}

func TestGetOrFetch_FetchError(t *testing.T) {
	cacheDB := setupTestCache(t)
	withGlobalCache(t, cacheDB)

	result, fromCache, err := GetOrFetch("test_cache", "test-key", func() (testPayload, error) {
		return testPayload{}, errors.New("fetch failed")
	})

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if fromCache {
		t.Error("Expected fromCache to be false")
	}
	if result.ID != 0 || result.Name != "" {
		t.Errorf("Expected zero value, got %+v", result)
	}
	if cacheDB.Exists("test_cache", "test-key") {
		t.Error("Expected failed fetch not to be cached")
	}
}

func TestDB_GetSet(t *testing.T) {
	cacheDB := setupTestCache(t)

	testKey := "test-key"
	testData := `{"id":1,"name":"Test"}`

	if err := cacheDB.Set("test_cache", testKey, testData); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	data, fromCache, err := cacheDB.Get("test_cache", testKey, time.Hour)
	if err != nil {
		t.Fatalf("Failed to get cache: %v", err)
	}
	if !fromCache {
		t.Error("Expected fromCache to be true")
	}
	if data != testData {
		t.Errorf("Expected %s, got %s", testData, data)
	}
}

func TestDB_GetExpired(t *testing.T) {
	cacheDB := setupTestCache(t)

	testKey := "test-key"
	if err := cacheDB.Set("test_cache", testKey, `{"id":1,"name":"Test"}`); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	setCachedAt(t, cacheDB, "test_cache", testKey, time.Now().Add(-2*time.Hour))

	data, fromCache, err := cacheDB.Get("test_cache", testKey, time.Hour)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache {
		t.Error("Expected fromCache to be false for expired cache")
	}
	if data != "" {
		t.Errorf("Expected empty string for expired cache, got %s", data)
	}
}

func TestDB_Clear(t *testing.T) {
	cacheDB := setupTestCache(t)

	_ = cacheDB.Set("test_cache", "key1", `{"id":1}`)
	_ = cacheDB.Set("test_cache", "key2", `{"id":2}`)
	_ = cacheDB.Set("test_cache", "key3", `{"id":3}`)

	rowsDeleted, err := cacheDB.Clear("test_cache")
	if err != nil {
		t.Fatalf("Failed to clear cache: %v", err)
	}
	if rowsDeleted != 3 {
		t.Errorf("Expected 3 rows deleted, got %d", rowsDeleted)
	}

	for _, key := range []string{"key1", "key2", "key3"} {
		if cacheDB.Exists("test_cache", key) {
			t.Errorf("Expected %s to be cleared", key)
		}
	}
}

func TestDB_Clear_InvalidTable(t *testing.T) {
	cacheDB := setupTestCache(t)

	if _, err := cacheDB.Clear("invalid_table"); err == nil {
		t.Error("Expected error for invalid table name")
	}
}

func TestDB_Exists(t *testing.T) {
	cacheDB := setupTestCache(t)

	_ = cacheDB.Set("test_cache", "existing", `{"id":1}`)

	if !cacheDB.Exists("test_cache", "existing") {
		t.Error("Expected cache to exist for existing key")
	}
	if cacheDB.Exists("test_cache", "non-existing") {
		t.Error("Expected cache not to exist for non-existing key")
	}
}
