// Kblint validates a knowledge base YAML file and prints a summary.
// It exits nonzero when the file fails validation, so it can gate CI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/linnemanlabs/salus/internal/kb"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "kblint:", err)
		os.Exit(1)
	}
}

func run() error {
	var path string
	flag.StringVar(&path, "knowledge-base", "", "path to the knowledge base YAML file (required)")
	flag.Parse()

	if path == "" {
		flag.Usage()
		return errors.New("-knowledge-base is required")
	}

	k, err := kb.Load(path)
	if err != nil {
		var verr *kb.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%s is invalid:\n%w", path, verr)
		}
		return err
	}

	fmt.Printf("%s: ok (%d topics, %d emergency rules)\n", path, k.Len(), len(k.EmergencyRules()))
	for _, t := range k.Topics() {
		fmt.Printf("  %-20s severity=%-9s keywords=%d followups=%d\n",
			t.Category, t.Severity, len(t.Keywords), len(t.Followups))
	}
	return nil
}
