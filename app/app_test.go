package app

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/agorahub/agora-node/config"
	"github.com/agorahub/agora-node/state"
	"github.com/agorahub/agora-node/tx"
	"github.com/agorahub/agora-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

const testChainId = "agora-test"

func newTestApp(t *testing.T) (*GovApp, ed25519.PrivKey) {
	t.Helper()
	cfg := config.DefaultGovAppConfig(t.TempDir())
	app, err := NewGovApp(cfg, cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(app.Stop)

	priv := ed25519.GenPrivKey()
	appState, err := (&types.AppGenesisState{
		OwnerAddress: priv.PubKey().Address().String(),
	}).Marshal()
	require.NoError(t, err)

	res, err := app.InitChain(context.Background(), &abcitypes.RequestInitChain{
		ChainId: testChainId,
		Time:    time.Unix(1000, 0),
		Validators: []abcitypes.ValidatorUpdate{
			abcitypes.Ed25519ValidatorUpdate(priv.PubKey().Bytes(), 10),
		},
		AppStateBytes: appState,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AppHash)
	return app, priv
}

func signedTx(t *testing.T, priv ed25519.PrivKey, tp tx.GovTxType, nonce uint64, inner any) []byte {
	t.Helper()
	btx := &tx.GovTx{
		Version: tx.GovTxVersion1,
		Type:    tp,
		Nonce:   nonce,
		Member:  state.StartAccountIdx,
		Tx:      inner,
	}
	dat, err := btx.SigData([]byte(testChainId))
	require.NoError(t, err)
	sig, err := priv.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}
	out, err := tx.MarshalGovTx(btx)
	require.NoError(t, err)
	return out
}

func finalizeAndCommit(t *testing.T, app *GovApp, height int64, blockTime int64, txs [][]byte) *abcitypes.ResponseFinalizeBlock {
	t.Helper()
	ctx := context.Background()
	res, err := app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{
		Height: height,
		Time:   time.Unix(blockTime, 0),
		Txs:    txs,
	})
	require.NoError(t, err)
	_, err = app.Commit(ctx, &abcitypes.RequestCommit{})
	require.NoError(t, err)
	return res
}

func TestInitChainSeedsLedger(t *testing.T) {
	app, priv := newTestApp(t)

	acnt, _, err := app.db.GetAccountByAddress(priv.PubKey().Address())
	require.NoError(t, err)
	require.NotNil(t, acnt)
	require.Equal(t, uint64(state.StartAccountIdx), acnt.Index)
	require.Equal(t, uint64(10)*config.WeiPerPower(0), acnt.Balance)
	require.Equal(t, priv.PubKey().Address().String(), app.db.Header().Owner)
	require.True(t, app.db.Header().VotingOpen)
}

func TestProposeVoteExecuteThroughBlocks(t *testing.T) {
	app, priv := newTestApp(t)
	ctx := context.Background()

	proposeDat := signedTx(t, priv, tx.GovTxTypePropose, 0, &tx.ProposeTx{
		Title:       "t",
		Description: "d",
	})

	checkRes, err := app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: proposeDat})
	require.NoError(t, err)
	require.Zero(t, checkRes.Code)

	res := finalizeAndCommit(t, app, 1, 1001, [][]byte{proposeDat})
	require.Len(t, res.TxResults, 1)
	require.Zero(t, res.TxResults[0].Code)
	require.Len(t, res.TxResults[0].Events, 1)
	require.Equal(t, types.EventProposalCreatedType, res.TxResults[0].Events[0].Type)

	voteDat := signedTx(t, priv, tx.GovTxTypeVote, 1, &tx.VoteTx{Proposal: 0, Support: true})
	res = finalizeAndCommit(t, app, 2, 1002, [][]byte{voteDat})
	require.Zero(t, res.TxResults[0].Code)

	execDat := signedTx(t, priv, tx.GovTxTypeExecute, 2, &tx.ExecuteTx{Proposal: 0})
	res = finalizeAndCommit(t, app, 3, 1003, [][]byte{execDat})
	require.Zero(t, res.TxResults[0].Code)
	ev := types.DecodeEventProposalExecuted(res.TxResults[0].Events[0])
	require.NotNil(t, ev)
	require.True(t, ev.Passed)

	p, _, err := app.db.GetProposalByIndex(0)
	require.NoError(t, err)
	require.True(t, p.Executed)
	require.True(t, p.Passed)
}

func TestFailedTxRecordedNotAborted(t *testing.T) {
	app, priv := newTestApp(t)

	// empty description fails, the block still lands
	badDat := signedTx(t, priv, tx.GovTxTypePropose, 0, &tx.ProposeTx{Title: "t"})
	res := finalizeAndCommit(t, app, 1, 1001, [][]byte{badDat})
	require.Len(t, res.TxResults, 1)
	require.NotZero(t, res.TxResults[0].Code)
	require.Contains(t, res.TxResults[0].Log, state.ErrEmptyDescription.Error())

	count, _ := app.db.ProposalCount()
	require.Zero(t, count)
}

func TestQueryProposalAndSession(t *testing.T) {
	app, priv := newTestApp(t)
	ctx := context.Background()

	proposeDat := signedTx(t, priv, tx.GovTxTypePropose, 0, &tx.ProposeTx{Title: "t", Description: "d"})
	finalizeAndCommit(t, app, 1, 1001, [][]byte{proposeDat})

	idx := make([]byte, 8)
	binary.BigEndian.PutUint64(idx, 0)
	res, err := app.Query(ctx, &abcitypes.RequestQuery{Path: "/proposals/", Data: idx})
	require.NoError(t, err)
	require.Zero(t, res.Code)
	require.Contains(t, string(res.Value), `"description":"d"`)

	res, err = app.Query(ctx, &abcitypes.RequestQuery{Path: "/session/"})
	require.NoError(t, err)
	require.Contains(t, string(res.Value), `"votingOpen":true`)

	res, err = app.Query(ctx, &abcitypes.RequestQuery{Path: "/nope/"})
	require.NoError(t, err)
	require.Equal(t, uint32(404), res.Code)
}

func TestCloseVotingThroughBlocks(t *testing.T) {
	app, priv := newTestApp(t)

	closeDat := signedTx(t, priv, tx.GovTxTypeCloseVoting, 0, &tx.CloseVotingTx{})
	res := finalizeAndCommit(t, app, 1, 1001, [][]byte{closeDat})
	require.Zero(t, res.TxResults[0].Code)
	require.False(t, app.db.Header().VotingOpen)

	// session stays closed across blocks
	proposeDat := signedTx(t, priv, tx.GovTxTypePropose, 1, &tx.ProposeTx{Title: "t", Description: "d"})
	res = finalizeAndCommit(t, app, 2, 1002, [][]byte{proposeDat})
	require.NotZero(t, res.TxResults[0].Code)
	require.Contains(t, res.TxResults[0].Log, state.ErrVotingClosed.Error())
}
