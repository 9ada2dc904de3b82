package EVMRPC

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"golxlybridge/config"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// TransactOpts builds keyed transact options for the configured signer
// with an explicit nonce. Networks without EIP-1559 support get a legacy
// gas price from the node.
func TransactOpts(ctx context.Context, client *ethclient.Client, networkID uint32, nonce uint64, gasLimit uint64) (*bind.TransactOpts, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(config.Config.Signer.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("error instantiating private key: %s", err)
	}
	net := config.Networks[networkID]
	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, big.NewInt(net.ChainID))
	if err != nil {
		return nil, fmt.Errorf("error instantiating transactor: %s", err)
	}

	auth.Context = ctx
	auth.Nonce = big.NewInt(int64(nonce))
	auth.Value = big.NewInt(0)
	auth.GasLimit = gasLimit
	if !net.IsEIP1559Supported {
		gasPrice, err := client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting suggested gas price: %s", err)
		}
		auth.GasPrice = gasPrice
	}
	return auth, nil
}
