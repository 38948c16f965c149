package main

import (
	"github.com/agorahub/agora-node/tx"
	"github.com/spf13/cobra"
)

type executeArguments struct {
	Url       string
	Index     uint64
	Nonce     uint64
	Skey      string
	Proposal  uint64
	Proposals []uint
	NoSend    bool
}

var executeArgs executeArguments
var executeBatchArgs executeArguments

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute a proposal, minting to the recipient when it passed",
	Long:  ``,
	Run:   executeRun,
}

var executeBatchCmd = &cobra.Command{
	Use:   "executebatch",
	Short: "Execute up to 10 proposals in one transaction",
	Long:  ``,
	Run:   executeBatchRun,
}

func init() {
	urlFlag(executeCmd, &executeArgs.Url)
	executeCmd.Flags().Uint64VarP(&executeArgs.Index, "index", "i", 0, "account index")
	executeCmd.Flags().Uint64VarP(&executeArgs.Nonce, "nonce", "n", 0, "account nonce")
	executeCmd.Flags().StringVarP(&executeArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	executeCmd.Flags().Uint64VarP(&executeArgs.Proposal, "proposal", "p", 0, "proposal index")
	executeCmd.Flags().BoolVarP(&executeArgs.NoSend, "nosend", "", false, "not send transaction but print signed payload")

	urlFlag(executeBatchCmd, &executeBatchArgs.Url)
	executeBatchCmd.Flags().Uint64VarP(&executeBatchArgs.Index, "index", "i", 0, "account index")
	executeBatchCmd.Flags().Uint64VarP(&executeBatchArgs.Nonce, "nonce", "n", 0, "account nonce")
	executeBatchCmd.Flags().StringVarP(&executeBatchArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	executeBatchCmd.Flags().UintSliceVarP(&executeBatchArgs.Proposals, "proposals", "p", nil, "proposal indexes")
	executeBatchCmd.Flags().BoolVarP(&executeBatchArgs.NoSend, "nosend", "", false, "not send transaction but print signed payload")
}

func executeRun(cmd *cobra.Command, args []string) {
	stx := &tx.ExecuteTx{
		Proposal: executeArgs.Proposal,
	}
	sendGovTx(executeArgs.Url, executeArgs.Index, executeArgs.Nonce, executeArgs.Skey, tx.GovTxTypeExecute, stx, executeArgs.NoSend)
}

func executeBatchRun(cmd *cobra.Command, args []string) {
	proposals := make([]uint64, 0, len(executeBatchArgs.Proposals))
	for _, p := range executeBatchArgs.Proposals {
		proposals = append(proposals, uint64(p))
	}
	stx := &tx.ExecuteBatchTx{
		Proposals: proposals,
	}
	sendGovTx(executeBatchArgs.Url, executeBatchArgs.Index, executeBatchArgs.Nonce, executeBatchArgs.Skey, tx.GovTxTypeExecuteBatch, stx, executeBatchArgs.NoSend)
}
