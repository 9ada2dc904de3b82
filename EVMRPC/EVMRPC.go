package EVMRPC

import (
	"fmt"
	"log"

	"golxlybridge/config"

	"github.com/ethereum/go-ethereum/ethclient"
)

// WithClient runs f against the network's RPC endpoints, primary first,
// falling through the ordered list until one of them answers.
func WithClient[T any](networkID uint32, f func(client *ethclient.Client) (T, error)) (res T, err error) {
	var client *ethclient.Client
	for _, url := range config.Networks[networkID].RPCList {
		client, err = ethclient.Dial(url)
		if err != nil {
			log.Println(fmt.Sprintf("Error connecting to %s: %s", url, err.Error()))
			continue
		}

		res, err = f(client)
		client.Close()
		if err == nil {
			return
		}
	}
	return
}
