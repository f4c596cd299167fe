package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"ammCore/internal/model"
)

// ReadOperations parses a JSONL operation stream. Operations without a
// seq are numbered by their position; explicit seqs must increase.
func ReadOperations(r io.Reader) ([]model.Operation, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var (
		ops  []model.Operation
		line int
		last uint64
	)
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var op model.Operation
		if err := json.Unmarshal(raw, &op); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if op.Op == "" {
			return nil, fmt.Errorf("line %d: missing op", line)
		}
		if op.Seq == 0 {
			op.Seq = last + 1
		}
		if op.Seq <= last {
			return nil, fmt.Errorf("line %d: seq %d does not follow %d", line, op.Seq, last)
		}
		last = op.Seq
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan operations: %w", err)
	}
	return ops, nil
}

// ParseKey accepts a base58 key or a 0x-prefixed 32-byte hex key.
func ParseKey(input string) (model.Pubkey, error) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "0x") {
		return model.ParsePubkey(input)
	}
	data, err := hexutil.Decode(input)
	if err != nil {
		return model.Pubkey{}, fmt.Errorf("invalid key %q: %w", input, err)
	}
	if len(data) != model.PubkeyLength {
		return model.Pubkey{}, fmt.Errorf("invalid key length: %s", input)
	}
	var key model.Pubkey
	copy(key[:], data)
	return key, nil
}

// ParseKeys converts a list of keys, skipping blanks.
func ParseKeys(inputs []string) ([]model.Pubkey, error) {
	keys := make([]model.Pubkey, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		key, err := ParseKey(input)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
