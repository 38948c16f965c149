package handler

import (
	"context"

	"github.com/agorahub/agora-node/state"
	"github.com/agorahub/agora-node/tx"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

// TxHandler runs one governance transaction type through the consensus
// lifecycle. Check validates against the committed state without mutating
// it; Prepare and Process apply the transaction to a working state.
// NewContext resets any per-block bookkeeping.
type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error)
	NewContext(ctx context.Context)
	Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error)
	Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error)
}
