package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	hostvm "github.com/ethwasm/hostvm"
	"github.com/ethwasm/hostvm/internal/state"
	"github.com/ethwasm/hostvm/types"
)

const (
	MemoryLimitPages = 512 // 32 MiB
	GasLimit         = 10_000_000
)

// This is just a demo to ensure the VM runs end to end against an in-memory
// world state: demo <contract.wasm> [input]
func main() {
	file := os.Args[1]
	fmt.Printf("Running %s...\n", file)
	code, err := os.ReadFile(file)
	if err != nil {
		panic(err)
	}
	fmt.Println("Loaded!")

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	vm, err := hostvm.NewVM(ctx,
		hostvm.WithLogger(logger),
		hostvm.WithMemoryLimitPages(MemoryLimitPages),
	)
	if err != nil {
		panic(err)
	}
	defer vm.Close(ctx)

	checksum, err := vm.StoreCode(ctx, code)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Stored code with checksum: %s\n", checksum)

	var input []byte
	if len(os.Args) > 2 {
		input = []byte(os.Args[2])
	}

	contract := types.Address{0x02}
	st := state.NewMemState()
	st.SetCode(contract, code)
	st.SetBalance(contract, types.NewWord(1_000_000))

	call := hostvm.CallContext{
		Caller:  types.Address{0x01},
		Origin:  types.Address{0x01},
		Address: contract,
		Input:   input,
	}
	block := hostvm.BlockContext{
		Coinbase:  types.Address{0xc0},
		Number:    1,
		Timestamp: uint64(time.Now().Unix()),
		GasLimit:  types.NewWord(GasLimit),
	}

	res, err := vm.Execute(ctx, checksum, call, block, st, GasLimit)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Return data: %X\n", res.ReturnData)
	fmt.Printf("Gas used: %d\n", res.GasUsed)
	for i, entry := range res.Logs {
		fmt.Printf("Log %d: address=%s topics=%d data=%X\n", i, entry.Address, len(entry.Topics), entry.Data)
	}
	if res.SelfDestructed {
		fmt.Println("Contract self-destructed")
	}
	fmt.Println("finished")
}
