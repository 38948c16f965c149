package tx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnmarshalGovTxDispatch(t *testing.T) {
	btx := &GovTx{
		Version: GovTxVersion1,
		Type:    GovTxTypePropose,
		Nonce:   3,
		Member:  65536,
		Tx: &ProposeTx{
			Title:       "t",
			Description: "d",
			Recipient:   "00112233445566778899aabbccddeeff00112233",
			Amount:      42,
		},
		Sig: [][]byte{{1, 2, 3}},
	}
	dat, err := MarshalGovTx(btx)
	require.NoError(t, err)

	got, err := UnmarshalGovTx(dat)
	require.NoError(t, err)
	require.Equal(t, GovTxTypePropose, got.Type)
	require.Equal(t, uint64(3), got.Nonce)
	require.Equal(t, uint64(65536), got.Member)
	stx, ok := got.Tx.(*ProposeTx)
	require.True(t, ok)
	require.Equal(t, "d", stx.Description)
	require.Equal(t, uint64(42), stx.Amount)
}

func TestUnmarshalGovTxBatch(t *testing.T) {
	btx := &GovTx{
		Version: GovTxVersion1,
		Type:    GovTxTypeExecuteBatch,
		Member:  65537,
		Tx:      &ExecuteBatchTx{Proposals: []uint64{0, 1, 2}},
	}
	dat, err := MarshalGovTx(btx)
	require.NoError(t, err)

	got, err := UnmarshalGovTx(dat)
	require.NoError(t, err)
	stx, ok := got.Tx.(*ExecuteBatchTx)
	require.True(t, ok)
	require.Equal(t, []uint64{0, 1, 2}, stx.Proposals)
}

func TestUnmarshalGovTxUnknownType(t *testing.T) {
	_, err := UnmarshalGovTx([]byte(`{"type":99}`))
	require.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalGovTx([]byte(`not json`))
	require.ErrorIs(t, err, ErrUnsupportedTxType)
}

func TestSigDataBindsChainId(t *testing.T) {
	btx := &GovTx{
		Version: GovTxVersion1,
		Type:    GovTxTypeVote,
		Nonce:   1,
		Member:  65536,
		Tx:      &VoteTx{Proposal: 0, Support: true},
		Sig:     [][]byte{{0xde, 0xad}},
	}
	a, err := btx.SigData([]byte("chain-a"))
	require.NoError(t, err)
	b, err := btx.SigData([]byte("chain-b"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	// the attached signature does not feed back into the digest
	btx.Sig = [][]byte{{0xbe, 0xef}}
	a2, err := btx.SigData([]byte("chain-a"))
	require.NoError(t, err)
	require.Equal(t, a, a2)
}
