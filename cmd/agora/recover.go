package main

import (
	"github.com/agorahub/agora-node/tx"
	"github.com/spf13/cobra"
)

type recoverArguments struct {
	Url    string
	Index  uint64
	Nonce  uint64
	Skey   string
	NoSend bool
}

var recoverArgs recoverArguments

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Force-fail every proposal past its deadline",
	Long:  ``,
	Run:   recoverRun,
}

func init() {
	urlFlag(recoverCmd, &recoverArgs.Url)
	recoverCmd.Flags().Uint64VarP(&recoverArgs.Index, "index", "i", 0, "account index")
	recoverCmd.Flags().Uint64VarP(&recoverArgs.Nonce, "nonce", "n", 0, "account nonce")
	recoverCmd.Flags().StringVarP(&recoverArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	recoverCmd.Flags().BoolVarP(&recoverArgs.NoSend, "nosend", "", false, "not send transaction but print signed payload")
}

func recoverRun(cmd *cobra.Command, args []string) {
	sendGovTx(recoverArgs.Url, recoverArgs.Index, recoverArgs.Nonce, recoverArgs.Skey, tx.GovTxTypeRecover, &tx.RecoverTx{}, recoverArgs.NoSend)
}
