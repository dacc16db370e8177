// The meshfile-dump command renders a binary mesh file as readable text
// according to a JSON format specification.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bkaradzic/go-lz4"
	"github.com/meshkit/meshfile/binmesh"
	"github.com/meshkit/meshfile/spec"
)

const usage = `usage: meshfile-dump -spec SPEC [-z] [INPUT] [OUTPUT]

Reads a binary mesh file from INPUT, decodes it according to the JSON
format specification at SPEC, and writes a readable representation to
OUTPUT. With -z, INPUT is LZ4-decompressed before decoding.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.
`

func main() {
	var input io.Reader = os.Stdin
	var output io.Writer = os.Stdout

	specPath := flag.String("spec", "", "path to the JSON format specification")
	compressed := flag.Bool("z", false, "LZ4-decompress the input file")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	args := flag.Args()

	if *specPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	specData, err := os.ReadFile(*specPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("read spec: %w", err))
		os.Exit(1)
	}
	var format spec.FormatSpec
	if err := json.Unmarshal(specData, &format); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("parse spec: %w", err))
		os.Exit(1)
	}

	if len(args) >= 1 && args[0] != "-" {
		in, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("open input: %w", err))
			os.Exit(1)
		}
		input = in
		defer in.Close()
	}
	if len(args) >= 2 && args[1] != "-" {
		out, err := os.Create(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("create output: %w", err))
			os.Exit(1)
		}
		defer out.Close()
		output = out
	}

	data, err := io.ReadAll(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("read input: %w", err))
		os.Exit(1)
	}
	if *compressed {
		if data, err = lz4.Decode(nil, data); err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("decompress: %w", err))
			os.Exit(1)
		}
	}

	warn, err := binmesh.Decoder{}.DumpText(output, bytes.NewReader(data), &format)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode: %w", err))
		os.Exit(1)
	}
}
