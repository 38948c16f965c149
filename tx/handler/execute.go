package handler

import (
	"context"

	"github.com/agorahub/agora-node/state"
	"github.com/agorahub/agora-node/tx"
	"github.com/agorahub/agora-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type ExecuteTxHandler struct {
	logger cmtlog.Logger

	memberSet map[uint64]bool
}

func NewExecuteTxHandler(logger cmtlog.Logger) (h *ExecuteTxHandler) {
	logger = logger.With("module", "executeTx")
	h = &ExecuteTxHandler{
		logger:    logger,
		memberSet: make(map[uint64]bool),
	}
	return
}

func (h *ExecuteTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.ExecuteTx)
	_, err1 := st.ExecuteProposal(stx, btx.Member, true)
	if err1 != nil {
		h.logger.Info("CheckTx ExecuteTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *ExecuteTxHandler) NewContext(ctx context.Context) {
	h.memberSet = make(map[uint64]bool)
}

func (h *ExecuteTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	res = &abcitypes.ExecTxResult{}
	if _, ok := h.memberSet[btx.Member]; ok {
		res.Code = 1
		res.Log = state.ErrOneActionInBlock.Error()
		return
	}
	wtx := btx.Tx.(*tx.ExecuteTx)
	event, err := st.ExecuteProposal(wtx, btx.Member, false)
	if err != nil {
		h.logger.Info("apply ExecuteTx fail", "err", err)
		res.Code = 1
		res.Log = err.Error()
		err = nil
		return
	}
	h.memberSet[btx.Member] = true
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventProposalExecuted(event)}
	}
	return
}

func (h *ExecuteTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *ExecuteTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
