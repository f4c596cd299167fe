package replay

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"ammCore/internal/model"
)

func TestReadOperationsNumbersLines(t *testing.T) {
	input := `{"op":"deposit","user":"11111111111111111111111111111111"}

{"op":"sweep"}
{"seq":10,"op":"sweep","at":1700000000}
`
	ops, err := ReadOperations(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ops, 3)
	require.Equal(t, []uint64{1, 2, 10}, []uint64{ops[0].Seq, ops[1].Seq, ops[2].Seq})
	require.Equal(t, int64(1700000000), ops[2].At)
}

func TestReadOperationsRejects(t *testing.T) {
	for name, input := range map[string]string{
		"bad json":     `{"op":`,
		"missing op":   `{"seq":1}`,
		"seq backward": "{\"seq\":5,\"op\":\"sweep\"}\n{\"seq\":3,\"op\":\"sweep\"}",
	} {
		_, err := ReadOperations(strings.NewReader(input))
		require.Error(t, err, name)
	}
}

func TestParseKey(t *testing.T) {
	key := model.Pubkey{0xde, 0xad, 0xbe, 0xef}

	fromBase58, err := ParseKey(key.String())
	require.NoError(t, err)
	require.Equal(t, key, fromBase58)

	fromHex, err := ParseKey(hexutil.Encode(key[:]))
	require.NoError(t, err)
	require.Equal(t, key, fromHex)

	_, err = ParseKey("0x1234")
	require.Error(t, err)
	_, err = ParseKey("0xzz")
	require.Error(t, err)

	keys, err := ParseKeys([]string{key.String(), " ", hexutil.Encode(key[:])})
	require.NoError(t, err)
	require.Len(t, keys, 2)
}
