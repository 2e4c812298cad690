package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stark20/internal/abi"
	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/ui"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert between Cairo wire encodings and readable values",
	Long: `Offline helpers for the encodings used in calldata and events.

Examples:
  stark20 convert u256-split 340282366920938463463374607431768211456
  stark20 convert u256-join 0x0 0x1
  stark20 convert str-encode STRK
  stark20 convert str-decode 0x5354524b
  stark20 convert address 0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7
  stark20 convert selector balance_of`,
}

// conversion is a pure converter from arguments to labelled results.
type conversion func(args []string) ([][2]string, error)

func convertU256Split(args []string) ([][2]string, error) {
	w, err := felt.ParseWide(args[0])
	if err != nil {
		return nil, err
	}
	return [][2]string{
		{"low", felt.Hex(w.Low)},
		{"high", felt.Hex(w.High)},
		{"calldata", fmt.Sprintf("[%s, %s]", felt.Hex(w.Low), felt.Hex(w.High))},
	}, nil
}

func convertU256Join(args []string) ([][2]string, error) {
	low, err := felt.ParseFelt(args[0])
	if err != nil {
		return nil, fmt.Errorf("low: %w", err)
	}
	high, err := felt.ParseFelt(args[1])
	if err != nil {
		return nil, fmt.Errorf("high: %w", err)
	}
	w, err := felt.U256FromFelts(low, high)
	if err != nil {
		return nil, err
	}
	return [][2]string{
		{"decimal", w.String()},
		{"hex", "0x" + w.BigInt().Text(16)},
	}, nil
}

func convertStrEncode(args []string) ([][2]string, error) {
	v, err := felt.EncodeShortText(args[0])
	if err != nil {
		return nil, err
	}
	return [][2]string{
		{"felt", felt.Hex(v)},
		{"decimal", v.String()},
	}, nil
}

func convertStrDecode(args []string) ([][2]string, error) {
	s, err := felt.DecodeShortTextHex(args[0])
	if err != nil {
		return nil, err
	}
	return [][2]string{{"text", s}}, nil
}

func convertAddress(args []string) ([][2]string, error) {
	a, err := felt.ParseAddress(args[0])
	if err != nil {
		return nil, err
	}
	return [][2]string{
		{"address", felt.FormatAddress(a)},
		{"padded", fmt.Sprintf("0x%064x", a)},
		{"decimal", a.String()},
	}, nil
}

func convertSelector(args []string) ([][2]string, error) {
	sel := abi.Selector(args[0])
	return [][2]string{
		{"selector", felt.Hex(sel)},
		{"decimal", sel.String()},
	}, nil
}

func conversionCommand(use, short string, nargs int, conv conversion) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := conv(args)
			if err != nil {
				return err
			}
			for _, p := range pairs {
				fmt.Fprintf(out(cmd), "  %-10s %s\n", ui.Meta(p[0]), ui.Val(p[1]))
			}
			return nil
		},
	}
}

func init() {
	convertCmd.AddCommand(
		conversionCommand("u256-split <amount>", "Split an amount into u256 low/high limbs", 1, convertU256Split),
		conversionCommand("u256-join <low> <high>", "Join u256 limbs into an amount", 2, convertU256Join),
		conversionCommand("str-encode <text>", "Pack up to 31 ASCII bytes into a felt", 1, convertStrEncode),
		conversionCommand("str-decode <felt>", "Unpack a short-string felt", 1, convertStrDecode),
		conversionCommand("address <felt>", "Normalize an address (short and 64-digit forms)", 1, convertAddress),
		conversionCommand("selector <name>", "Compute the sn_keccak entry point selector", 1, convertSelector),
	)
}
