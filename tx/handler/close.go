package handler

import (
	"context"

	"github.com/agorahub/agora-node/state"
	"github.com/agorahub/agora-node/tx"
	"github.com/agorahub/agora-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type CloseVotingTxHandler struct {
	logger cmtlog.Logger
}

func NewCloseVotingTxHandler(logger cmtlog.Logger) (h *CloseVotingTxHandler) {
	logger = logger.With("module", "closeVotingTx")
	h = &CloseVotingTxHandler{
		logger: logger,
	}
	return
}

func (h *CloseVotingTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	_, err1 := st.CloseVoting(btx.Member, true)
	if err1 != nil {
		h.logger.Info("CheckTx CloseVotingTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *CloseVotingTxHandler) NewContext(ctx context.Context) {
}

func (h *CloseVotingTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	res = &abcitypes.ExecTxResult{}
	event, err := st.CloseVoting(btx.Member, false)
	if err != nil {
		h.logger.Info("apply CloseVotingTx fail", "err", err)
		res.Code = 1
		res.Log = err.Error()
		err = nil
		return
	}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventVotingClosed(event)}
	}
	return
}

func (h *CloseVotingTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *CloseVotingTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
