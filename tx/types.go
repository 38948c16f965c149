package tx

import "errors"

type GovTxType uint8

const (
	GovTxTypeUnknown      GovTxType = 0
	GovTxTypePropose      GovTxType = 1
	GovTxTypeVote         GovTxType = 2
	GovTxTypeExecute      GovTxType = 3
	GovTxTypeExecuteBatch GovTxType = 4
	GovTxTypeCloseVoting  GovTxType = 5
	GovTxTypeRecover      GovTxType = 6
)

const (
	GovTxVersion0 uint8 = 0
	GovTxVersion1 uint8 = 1
)

// MaxBatchExecute caps the number of proposal ids a single batch-execute
// transaction may carry.
const MaxBatchExecute = 10

var (
	ErrInvalidTx         = errors.New("invalid tx")
	ErrUnsupportedTxType = errors.New("unsupported tx type")
	ErrUnmatchedTxType   = errors.New("unmatched tx type")

	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
)
