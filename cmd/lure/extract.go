package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/lure/internal/classifier"
	"github.com/MikeSquared-Agency/lure/internal/intel"
)

var extractPretty bool

var extractCmd = &cobra.Command{
	Use:   "extract [text...]",
	Short: "Run the extractor and classifier on a message",
	Long: `Extract prints the intelligence and scam verdict for one message as JSON.
The message is taken from the arguments, or from stdin when none are given.`,
	Example: `  lure extract "Pay Rs 10 to refund.desk@okaxis or call +91 9876543210"
  echo "your KYC is blocked" | lure extract --pretty`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = string(data)
		}
		return runExtract(cmd.OutOrStdout(), text, extractPretty)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractPretty, "pretty", false, "Indent the JSON output")
}

type extractOutput struct {
	Intel   intel.Intel        `json:"extractedIntelligence"`
	Verdict classifier.Verdict `json:"verdict"`
}

func runExtract(w io.Writer, text string, pretty bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("no message text given")
	}

	out := extractOutput{
		Intel:   intel.Extract(text),
		Verdict: classifier.Detect(text, nil, nil),
	}

	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
