package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ammCore/internal/model"
)

func TestJsonlStoragePutEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.jsonl")
	s := NewJsonlStorage(path)

	ev, err := model.NewEventRecord(model.EventDeposit, model.Pubkey{}, time.Unix(10, 0), model.DepositData{Amount: 5, Balance: 5})
	require.NoError(t, err)
	ev.Seq = 1
	require.NoError(t, s.PutEvents(context.Background(), []model.EventRecord{ev}))
	ev.Seq = 2
	require.NoError(t, s.PutEvents(context.Background(), []model.EventRecord{ev}))
	require.NoError(t, s.PutEvents(context.Background(), nil))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var seqs []uint64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var got model.EventRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &got))
		require.Equal(t, model.EventDeposit, got.Kind)
		seqs = append(seqs, got.Seq)
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, []uint64{1, 2}, seqs)
}
