package handler

import (
	"context"

	"github.com/agorahub/agora-node/state"
	"github.com/agorahub/agora-node/tx"
	"github.com/agorahub/agora-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type ExecuteBatchTxHandler struct {
	logger cmtlog.Logger

	memberSet map[uint64]bool
}

func NewExecuteBatchTxHandler(logger cmtlog.Logger) (h *ExecuteBatchTxHandler) {
	logger = logger.With("module", "executeBatchTx")
	h = &ExecuteBatchTxHandler{
		logger:    logger,
		memberSet: make(map[uint64]bool),
	}
	return
}

func (h *ExecuteBatchTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.ExecuteBatchTx)
	_, err1 := st.ExecuteProposals(stx, btx.Member, true)
	if err1 != nil {
		h.logger.Info("CheckTx ExecuteBatchTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *ExecuteBatchTxHandler) NewContext(ctx context.Context) {
	h.memberSet = make(map[uint64]bool)
}

// handle applies the batch. Execution is not atomic: proposals executed
// before a failing entry stay executed, so a non-zero result code can
// still carry events for the entries that went through.
func (h *ExecuteBatchTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	res = &abcitypes.ExecTxResult{}
	if _, ok := h.memberSet[btx.Member]; ok {
		res.Code = 1
		res.Log = state.ErrOneActionInBlock.Error()
		return
	}
	wtx := btx.Tx.(*tx.ExecuteBatchTx)
	events, err := st.ExecuteProposals(wtx, btx.Member, false)
	for _, event := range events {
		res.Events = append(res.Events, types.EncodeEventProposalExecuted(event))
	}
	if err != nil {
		h.logger.Info("apply ExecuteBatchTx fail", "err", err, "executed", len(events))
		res.Code = 1
		res.Log = err.Error()
		err = nil
	}
	h.memberSet[btx.Member] = true
	return
}

func (h *ExecuteBatchTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *ExecuteBatchTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
