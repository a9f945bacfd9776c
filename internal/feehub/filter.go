package feehub

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ProgramFieldOffset is where Config.program starts: discriminator then bump.
const ProgramFieldOffset = len(ConfigDiscriminator) + 1

// ProgramFilter narrows a program-account scan to configs governing target.
func ProgramFilter(target solana.PublicKey) rpc.RPCFilter {
	return rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{
			Offset: uint64(ProgramFieldOffset),
			Bytes:  solana.Base58(append([]byte(nil), target[:]...)),
		},
	}
}

// DiscriminatorFilter narrows a scan to Config accounts.
func DiscriminatorFilter() rpc.RPCFilter {
	return rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{
			Offset: 0,
			Bytes:  solana.Base58(append([]byte(nil), ConfigDiscriminator[:]...)),
		},
	}
}

// ConfigFilters returns the filters used to list every config for target.
func ConfigFilters(target solana.PublicKey) []rpc.RPCFilter {
	return []rpc.RPCFilter{DiscriminatorFilter(), ProgramFilter(target)}
}

// MatchFilters applies memcmp and data-size filters to raw account data the
// way an RPC node does.
func MatchFilters(data []byte, filters []rpc.RPCFilter) bool {
	for _, f := range filters {
		if f.DataSize != 0 && uint64(len(data)) != f.DataSize {
			return false
		}
		if f.Memcmp == nil {
			continue
		}
		start := f.Memcmp.Offset
		end := start + uint64(len(f.Memcmp.Bytes))
		if end > uint64(len(data)) || !bytes.Equal(data[start:end], f.Memcmp.Bytes) {
			return false
		}
	}
	return true
}
