package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bookquote-backend/internal/config"
	"bookquote-backend/internal/domains/importer/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is a minimal in-memory pkg/cache.Cache.
type fakeCache struct {
	data map[string][]byte

	gets, hits, sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.sets++
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) DeletePattern(context.Context, string) error { return nil }
func (c *fakeCache) Ping(context.Context) error                  { return nil }

func newTemplateServiceFixture() (*TemplateService, *fakeTemplateRepo, *fakeCache) {
	repo := newFakeTemplateRepo()
	cache := newFakeCache()
	svc := NewTemplateService(repo, cache, config.ImportConfig{TemplateCacheMinutes: 30})
	return svc, repo, cache
}

func TestTemplateServiceCreate(t *testing.T) {
	svc, _, _ := newTemplateServiceFixture()
	tenantID := uuid.New()

	t.Run("fingerprint derived from expected headers", func(t *testing.T) {
		tpl, err := svc.Create(context.Background(), tenantID, model.CreateTemplateRequest{
			Name:            "vendor-a sheet",
			Mapping:         model.Mapping{"ISBN": model.FieldISBN, "Title": model.FieldTitle},
			ExpectedHeaders: []string{"ISBN", "Title"},
		})
		require.NoError(t, err)

		assert.Equal(t, model.HeaderFingerprint([]string{"ISBN", "Title"}), tpl.Fingerprint)
		assert.NotEqual(t, uuid.Nil, tpl.ID)
	})

	t.Run("invalid mapping target rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), tenantID, model.CreateTemplateRequest{
			Name:            "bad",
			Mapping:         model.Mapping{"ISBN": "not_a_field"},
			ExpectedHeaders: []string{"ISBN"},
		})
		require.Error(t, err)
	})
}

func TestTemplateServiceFindByFingerprint(t *testing.T) {
	svc, repo, cache := newTemplateServiceFixture()
	tenantID := uuid.New()

	headers := []string{"ISBN", "Title"}
	fp := model.HeaderFingerprint(headers)
	_, err := repo.Create(context.Background(), &model.ImportTemplate{
		TenantID:        tenantID,
		Name:            "vendor-a sheet",
		Mapping:         model.Mapping{"ISBN": model.FieldISBN, "Title": model.FieldTitle},
		ExpectedHeaders: headers,
		Fingerprint:     fp,
	})
	require.NoError(t, err)

	first, err := svc.FindByFingerprint(context.Background(), tenantID, fp)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, cache.sets, "miss populates the cache")

	second, err := svc.FindByFingerprint(context.Background(), tenantID, fp)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 1, cache.hits, "second lookup served from cache")

	t.Run("unknown fingerprint is nil nil", func(t *testing.T) {
		tpl, err := svc.FindByFingerprint(context.Background(), tenantID, "no-such-fingerprint")
		require.NoError(t, err)
		assert.Nil(t, tpl)
	})

	t.Run("delete invalidates the cached entry", func(t *testing.T) {
		tpl, err := svc.FindByFingerprint(context.Background(), tenantID, fp)
		require.NoError(t, err)
		require.NotNil(t, tpl)

		require.NoError(t, svc.Delete(context.Background(), tenantID, tpl.ID))

		found, err := svc.FindByFingerprint(context.Background(), tenantID, fp)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}
