//go:build integration

package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"relay/internal/testinfra"
	"relay/pkg/errors"
	"relay/pkg/migrations"
)

func TestRepository_Save(t *testing.T) {
	infra := testinfra.Setup(t, testinfra.Options{Mongo: true})
	ctx := context.Background()

	require.NoError(t, migrations.EnsureAuditIndexes(ctx, infra.MongoDB, "matches"))
	require.NoError(t, migrations.EnsureAuditIndexes(ctx, infra.MongoDB, "matches"))

	repo := NewRepository(infra.MongoDB, "matches")
	require.NoError(t, repo.Save(ctx, sampleMessage()))
	require.NoError(t, repo.Save(ctx, sampleMessage()))

	count, err := infra.MongoDB.Collection("matches").CountDocuments(ctx, bson.M{"message_id": "req-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	var stored Record
	require.NoError(t, infra.MongoDB.Collection("matches").FindOne(ctx, bson.M{"message_id": "req-1"}).Decode(&stored))
	assert.Equal(t, "monitor_email", stored.MessageType)
	assert.Contains(t, stored.Data, `"company_number":"00006400"`)

	indexes, err := infra.MongoDB.Collection("matches").Indexes().ListSpecifications(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		names = append(names, idx.Name)
	}
	assert.Contains(t, names, "idx_matches_message_id")
	assert.Contains(t, names, "idx_matches_created_at")
}

func TestRepository_SaveFailureIsNonRetryable(t *testing.T) {
	infra := testinfra.Setup(t, testinfra.Options{Mongo: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRepository(infra.MongoDB, "matches").Save(ctx, sampleMessage())
	require.Error(t, err)
	assert.True(t, errors.IsNonRetryable(err))
	assert.ErrorIs(t, err, errors.ErrPersistence)
	assert.Equal(t, "audit", errors.ContextOf(err))
}
