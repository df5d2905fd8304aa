// veil-tx is a command-line tool for working with Veil confidential
// transactions: key derivation, transaction assembly, and validation.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/veilnet/veil-chain/config"
	"github.com/veilnet/veil-chain/internal/log"
	"github.com/veilnet/veil-chain/internal/wallet"
	"github.com/veilnet/veil-chain/pkg/commitment"
	"github.com/veilnet/veil-chain/pkg/rangeproof"
	"github.com/veilnet/veil-chain/pkg/tx"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Global flags before the subcommand.
	logLevel := "info"
	jsonLogs := false

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--log-level" && len(args) > 1:
			logLevel = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--log-level="):
			logLevel = args[0][len("--log-level="):]
			args = args[1:]
		case args[0] == "--json-logs":
			jsonLogs = true
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if err := log.Init(logLevel, jsonLogs, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "mnemonic":
		cmdMnemonic()
	case "derive":
		cmdDerive(cmdArgs)
	case "demo":
		cmdDemo(cmdArgs)
	case "params":
		cmdParams()
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: veil-tx [global flags] <command> [flags]

Global flags:
  --log-level <lvl>   debug, info, warn, error (default: info)
  --json-logs         Structured JSON log output

Commands:
  mnemonic                        Generate a new 24-word mnemonic
  derive --mnemonic <words> [--account <n>] [--index <n>]
                                  Derive a blinding key from a mnemonic
  demo [--values <v1,v2,...>] [--fee <amt>] [--bits <n>]
                                  Build and validate a demo transaction
  params                          Show protocol parameters
`)
}

func cmdMnemonic() {
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(mnemonic)
}

func cmdDerive(args []string) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic (required)")
	passphrase := fs.String("passphrase", "", "optional BIP-39 passphrase")
	account := fs.Uint("account", 0, "account index")
	index := fs.Uint("index", 0, "key index")
	fs.Parse(args)

	if *mnemonic == "" {
		fmt.Fprintln(os.Stderr, "Error: --mnemonic is required")
		os.Exit(1)
	}

	km, err := wallet.NewKeyManager(*mnemonic, *passphrase, uint32(*account))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	key, err := km.SpendingKey(uint32(*index))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer key.Zero()

	pub := key.PublicKey()
	fmt.Printf("Account:    %d\n", *account)
	fmt.Printf("Index:      %d\n", *index)
	fmt.Printf("Public key: %x\n", pub)
}

// cmdDemo builds a full confidential transaction from freshly derived
// keys and runs it through the internal consistency protocol, reporting
// timings for each stage.
func cmdDemo(args []string) {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	values := fs.String("values", "6000,4000", "comma-separated output values")
	fee := fs.Uint64("fee", config.MinimumFee, "kernel fee")
	bits := fs.Int("bits", config.RangeProofBits, "range proof bit width")
	fs.Parse(args)

	outValues, err := parseValues(*values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	km, err := wallet.NewKeyManager(mnemonic, "", 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// One input covering all outputs plus the fee.
	var total uint64
	for _, v := range outValues {
		total += v
	}
	inKey, err := km.SpendingKey(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	spends := []tx.UnblindedOutput{tx.NewUnblindedOutput(total+*fee, inKey, 0)}

	creates := make([]tx.UnblindedOutput, 0, len(outValues))
	for i, v := range outValues {
		key, err := km.SpendingKey(uint32(i + 1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		creates = append(creates, tx.NewUnblindedOutput(v, key, 0))
	}

	sender, err := wallet.NewSender(*bits)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	transaction, err := sender.BuildTransaction(spends, creates, *fee, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	buildDur := time.Since(start)

	factory := commitment.NewFactory()
	verifier, err := rangeproof.New(*bits, factory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	start = time.Now()
	if err := transaction.ValidateInternalConsistency(factory, verifier); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	validateDur := time.Since(start)

	kernel := transaction.Body.Kernels[0]
	fmt.Printf("Inputs:        %d\n", len(transaction.Body.Inputs))
	fmt.Printf("Outputs:       %d\n", len(transaction.Body.Outputs))
	fmt.Printf("Fee:           %d\n", transaction.TotalFees())
	fmt.Printf("Kernel excess: %s\n", kernel.Excess)
	fmt.Printf("Kernel hash:   %s\n", kernel.Hash())
	fmt.Printf("Proof size:    %d bytes/output\n", verifier.ProofSize())
	fmt.Printf("Build time:    %s\n", buildDur)
	fmt.Printf("Validate time: %s\n", validateDur)
}

func cmdParams() {
	p := config.DefaultParams()
	fmt.Printf("Max inputs:       %d\n", p.MaxTxInputs)
	fmt.Printf("Max outputs:      %d\n", p.MaxTxOutputs)
	fmt.Printf("Max recipients:   %d\n", p.MaxTxRecipients)
	fmt.Printf("Minimum fee:      %d\n", p.MinimumFee)
	fmt.Printf("Range proof bits: %d\n", p.RangeProofBits)
}

func parseValues(s string) ([]uint64, error) {
	parts := strings.Split(s, ",")
	values := make([]uint64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", p, err)
		}
		if v == 0 {
			return nil, fmt.Errorf("output values must be positive")
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no output values given")
	}
	return values, nil
}
