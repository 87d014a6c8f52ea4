package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zsiec/pitwall/internal/telemetry"
	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

func newDecodeCmd() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "decode <file>...",
		Short: "Decode captured datagrams and print them as JSON",
		Long: `Decode reads files that each hold one captured UDP datagram and prints
the decoded record as JSON. A file name of "-" reads standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			for _, name := range args {
				if err := decodeFile(cmd.InOrStdin(), enc, name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "print one record per line")
	return cmd
}

func decodeFile(stdin io.Reader, enc *json.Encoder, name string) error {
	var (
		buf []byte
		err error
	)
	if name == "-" {
		buf, err = io.ReadAll(stdin)
	} else {
		buf, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	p, err := packet.Decode(buf)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return enc.Encode(telemetry.NewRecord(p))
}
