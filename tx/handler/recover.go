package handler

import (
	"context"

	"github.com/agorahub/agora-node/state"
	"github.com/agorahub/agora-node/tx"
	"github.com/agorahub/agora-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type RecoverTxHandler struct {
	logger cmtlog.Logger
}

func NewRecoverTxHandler(logger cmtlog.Logger) (h *RecoverTxHandler) {
	logger = logger.With("module", "recoverTx")
	h = &RecoverTxHandler{
		logger: logger,
	}
	return
}

func (h *RecoverTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	_, err1 := st.RecoverExpired(btx.Member, true)
	if err1 != nil {
		h.logger.Info("CheckTx RecoverTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *RecoverTxHandler) NewContext(ctx context.Context) {
}

// handle force-fails every proposal past its deadline. A sweep finding
// nothing expired still succeeds, it just emits no events.
func (h *RecoverTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	res = &abcitypes.ExecTxResult{}
	events, err := st.RecoverExpired(btx.Member, false)
	if err != nil {
		h.logger.Info("apply RecoverTx fail", "err", err)
		res.Code = 1
		res.Log = err.Error()
		err = nil
		return
	}
	for _, event := range events {
		res.Events = append(res.Events, types.EncodeEventProposalExecuted(event))
	}
	return
}

func (h *RecoverTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *RecoverTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
