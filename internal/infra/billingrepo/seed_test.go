package billingrepo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/billing-dashboard/internal/domain/billing"
)

func TestNewSeededMemoryRepositoryServesSeedRows(t *testing.T) {
	path := writeSeed(t, `
records:
  - {user_id: u1, month: "2024-02", total_amount: 20}
  - {user_id: u1, month: "2024-01", total_amount: 10.5}
  - {user_id: u2, month: "2024-01", total_amount: 0}
`)

	repo, err := NewSeededMemoryRepository(path)
	require.NoError(t, err)

	got, err := repo.ListMonthly(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []billing.Record{
		{UserID: "u1", Month: "2024-01", TotalAmount: 10.5},
		{UserID: "u1", Month: "2024-02", TotalAmount: 20},
	}, got)

	got, err = repo.ListMonthly(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestLoadSeedFileRejectsIncompleteRows(t *testing.T) {
	_, err := LoadSeedFile(writeSeed(t, `records: [{user_id: u1, month: "2024-01"}]`))
	require.ErrorContains(t, err, "record 0")

	_, err = LoadSeedFile(writeSeed(t, `records: [{month: "2024-01", total_amount: 3}]`))
	require.Error(t, err)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestShippedSeedFileLoads(t *testing.T) {
	records, err := LoadSeedFile(filepath.Join("..", "..", "..", "configs", "billing_seed.yaml"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(records), billing.HikeWindow)
}

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
