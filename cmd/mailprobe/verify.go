package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/optimode/mailprobe"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [address ...|-]",
	Short: "Classify addresses and print an {address: classification} JSON object",
	Long: `Classify the given addresses. With "-" the addresses are read from
standard input, one per line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		emails := args
		if len(args) == 1 && args[0] == "-" {
			if emails, err = readAddresses(cmd.InOrStdin()); err != nil {
				return err
			}
		}

		results, err := newVerifier(logger).VerifyMany(cmd.Context(), emails, concurrency())
		if err != nil {
			return err
		}
		return writeClassifications(cmd.OutOrStdout(), results)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// readAddresses reads one address per line, skipping blank lines.
func readAddresses(r io.Reader) ([]string, error) {
	var emails []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			emails = append(emails, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading addresses: %w", err)
	}
	return emails, nil
}

func writeClassifications(w io.Writer, results []mailprobe.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mailprobe.Classifications(results)); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}
