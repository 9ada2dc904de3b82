package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	yaml "gopkg.in/yaml.v2"
)

// reading config error is fatal, and exits main thread
func processError(err error) {
	fmt.Println(err)
	os.Exit(2)
}

func readFile(cfg *Configuration) {
	f, err := os.Open("config.yml")
	if err != nil {
		processError(err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(cfg)
	if err != nil {
		processError(err)
	}
}

func readEnv(cfg *Configuration) {
	err := envconfig.Process("", cfg)
	if err != nil {
		processError(err)
	}
}

// per-network values that must come from the environment: contract
// addresses and (optionally) a primary RPC prepended to the fallback list
func readNetworkEnv() {
	for id, net := range Networks {
		if rpc := os.Getenv(fmt.Sprintf("NETWORK_%d_RPC", id)); rpc != "" {
			net.RPCList = append([]string{rpc}, net.RPCList...)
		}
		if v := os.Getenv(fmt.Sprintf("NETWORK_%d_BRIDGE", id)); v != "" {
			net.BridgeAddress = v
		}
		if v := os.Getenv(fmt.Sprintf("NETWORK_%d_BRIDGE_EXTENSION", id)); v != "" {
			net.BridgeExtensionAddress = v
		}
		if v := os.Getenv(fmt.Sprintf("NETWORK_%d_ROUTER", id)); v != "" {
			net.RouterAddress = v
		}
		if v := os.Getenv(fmt.Sprintf("NETWORK_%d_WRAPPER", id)); v != "" {
			net.WrapperAddress = v
		}
		Networks[id] = net
	}
}

// Validate fails fast on anything the workflows cannot run without.
func Validate() error {
	if Config.Signer.PrivateKey == "" {
		return fmt.Errorf("signer private key is not configured")
	}
	if Config.Signer.PublicAddress == "" {
		return fmt.Errorf("signer address is not configured")
	}
	if Config.Attestation.URL == "" || Config.Attestation.APIKey == "" {
		return fmt.Errorf("attestation API url/key is not configured")
	}
	if Config.ProofAPI == "" {
		return fmt.Errorf("proof API url is not configured")
	}
	for id, net := range Networks {
		if len(net.RPCList) == 0 {
			return fmt.Errorf("network %d (%s) has no RPC endpoints", id, net.Name)
		}
		if net.BridgeAddress == "" {
			return fmt.Errorf("network %d (%s) bridge address is not configured", id, net.Name)
		}
		if net.BridgeExtensionAddress == "" {
			return fmt.Errorf("network %d (%s) bridge extension address is not configured", id, net.Name)
		}
	}
	return nil
}

func Init() {
	readFile(&Config)
	readEnv(&Config)
	readNetworkEnv()

	if err := Validate(); err != nil {
		processError(err)
	}
}
