package main

import (
	"github.com/agorahub/agora-node/tx"
	"github.com/spf13/cobra"
)

type closeVotingArguments struct {
	Url    string
	Index  uint64
	Nonce  uint64
	Skey   string
	NoSend bool
}

var closeVotingArgs closeVotingArguments

var closeVotingCmd = &cobra.Command{
	Use:   "closevoting",
	Short: "Close the voting session, owner only",
	Long:  ``,
	Run:   closeVotingRun,
}

func init() {
	urlFlag(closeVotingCmd, &closeVotingArgs.Url)
	closeVotingCmd.Flags().Uint64VarP(&closeVotingArgs.Index, "index", "i", 0, "account index")
	closeVotingCmd.Flags().Uint64VarP(&closeVotingArgs.Nonce, "nonce", "n", 0, "account nonce")
	closeVotingCmd.Flags().StringVarP(&closeVotingArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	closeVotingCmd.Flags().BoolVarP(&closeVotingArgs.NoSend, "nosend", "", false, "not send transaction but print signed payload")
}

func closeVotingRun(cmd *cobra.Command, args []string) {
	sendGovTx(closeVotingArgs.Url, closeVotingArgs.Index, closeVotingArgs.Nonce, closeVotingArgs.Skey, tx.GovTxTypeCloseVoting, &tx.CloseVotingTx{}, closeVotingArgs.NoSend)
}
