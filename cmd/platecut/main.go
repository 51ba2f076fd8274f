// PlateCut: plate cutting optimizer
//
// Computes cutting patterns for rectangular items on stock plates and
// offcuts, compares scenarios, and exports PDF, Excel, DXF, PNG and G-code.
//
// Build:
//   go build -o platecut ./cmd/platecut
//
// Examples:
//   platecut calculate --items parts.csv --kerf 3 --out result.json
//   platecut export result.json --format pdf --out cut-sheets.pdf
//   platecut serve --addr :8080

package main

import (
	"os"

	"k8s.io/klog/v2"
)

func main() {
	defer klog.Flush()
	if err := newRootCmd().Execute(); err != nil {
		klog.Flush()
		os.Exit(1)
	}
}
