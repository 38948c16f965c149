package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/agorahub/agora-node/crypto"
	"github.com/agorahub/agora-node/tx"
	"github.com/cometbft/cometbft/rpc/client/http"
)

// sendGovTx signs and broadcasts one governance transaction. A zero nonce
// is resolved from the account's current nonce. With noSend the signed
// payload is printed instead of broadcast.
func sendGovTx(url string, member uint64, nonce uint64, skeyPath string, tp tx.GovTxType, inner any, noSend bool) {
	cli, err := http.New(url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		fmt.Printf("get chain genesis err:%v\n", err)
		return
	}
	chainId := gres.Genesis.ChainID
	if nonce == 0 {
		act, err := queryAccount(url, member, "")
		if err != nil {
			return
		}
		nonce = act.Nonce
	}
	btx := tx.GovTx{
		Version: tx.GovTxVersion1,
		Type:    tp,
		Nonce:   nonce,
		Member:  member,
		Tx:      inner,
	}
	pv := crypto.LoadFilePV(skeyPath)
	if err := pv.SignTx(&btx, chainId); err != nil {
		fmt.Printf("sign tx err:%v\n", err)
		return
	}
	println("pubkey:", hex.EncodeToString(pv.PublicKey()))
	println("address:", pv.Address())
	dat, err := tx.MarshalGovTx(&btx)
	if err != nil {
		fmt.Printf("encode tx err:%v\n", err)
		return
	}
	if noSend {
		fmt.Println("signed tx:")
		fmt.Println(hex.EncodeToString(dat))
		return
	}
	res, err := cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		fmt.Printf("broadcast tx err:%v\n", err)
		return
	}
	out, _ := json.Marshal(res)
	fmt.Printf("%v\n", string(out))
}
