package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields() EntityFields {
	return EntityFields{
		Name:              "Acme Holdings",
		CurrentPrice:      ptr(12.50),
		Sector:            ptr("Tech"),
		Country:           ptr("US"),
		FoundingYear:      ptr(1999),
		SharesOutstanding: ptr(int64(1000)),
		MarketCap:         ptr(12500.00),
	}
}

func TestUpdateEntity_RewritesMutableFields(t *testing.T) {
	tx := &fakeTx{execTag: pgconn.NewCommandTag("UPDATE 1")}
	svc := NewService(&fakeStore{rec: &recorder{}, tx: tx}, nil, nil)

	require.NoError(t, svc.UpdateEntity(context.Background(), 1, fields()))

	assert.Contains(t, tx.gotSQL, "UPDATE entities")
	assert.NotContains(t, tx.gotSQL, "SET id", "identifier is never rewritten")
	require.Len(t, tx.gotArgs, 8)
	assert.Equal(t, int64(1), tx.gotArgs[0])
	assert.Equal(t, "Acme Holdings", tx.gotArgs[1])
}

func TestUpdateEntity_NotFound(t *testing.T) {
	tx := &fakeTx{execTag: pgconn.NewCommandTag("UPDATE 0")}
	svc := NewService(&fakeStore{rec: &recorder{}, tx: tx}, nil, nil)

	err := svc.UpdateEntity(context.Background(), 404, fields())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateEntity_StatementError(t *testing.T) {
	boom := errors.New("numeric field overflow")
	tx := &fakeTx{execErr: boom}
	svc := NewService(&fakeStore{rec: &recorder{}, tx: tx}, nil, nil)

	err := svc.UpdateEntity(context.Background(), 1, fields())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestDeleteEntity_Deletes(t *testing.T) {
	tx := &fakeTx{execTag: pgconn.NewCommandTag("DELETE 1")}
	svc := NewService(&fakeStore{rec: &recorder{}, tx: tx}, nil, nil)

	require.NoError(t, svc.DeleteEntity(context.Background(), 1))
	assert.True(t, strings.HasPrefix(tx.gotSQL, "DELETE FROM entities"))
	assert.Equal(t, []any{int64(1)}, tx.gotArgs)
}

func TestDeleteEntity_NotFound(t *testing.T) {
	tx := &fakeTx{execTag: pgconn.NewCommandTag("DELETE 0")}
	svc := NewService(&fakeStore{rec: &recorder{}, tx: tx}, nil, nil)

	err := svc.DeleteEntity(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveManagement(t *testing.T) {
	arch := &fakeArchiver{objects: []string{"entities.csv", "transactions.csv"}}
	svc := NewService(&fakeStore{rec: &recorder{}}, nil, arch)

	names, err := svc.ListArchive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"entities.csv", "transactions.csv"}, names)

	require.NoError(t, svc.DeleteArchived(context.Background(), "entities.csv"))
	assert.Equal(t, []string{"entities.csv"}, arch.deleted)
}
