// The meshfile-conv command converts a Wavefront OBJ file to a binary
// mesh file laid out according to a JSON format specification.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bkaradzic/go-lz4"
	"github.com/meshkit/meshfile"
	"github.com/meshkit/meshfile/binmesh"
	"github.com/meshkit/meshfile/errors"
	"github.com/meshkit/meshfile/spec"
)

const usage = `usage: meshfile-conv -spec SPEC [-z] [INPUT] [OUTPUT]

Reads OBJ text from INPUT, and writes to OUTPUT the mesh encoded in the
binary layout declared by the JSON format specification at SPEC. With
-z, the produced file is LZ4-compressed.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.
`

func main() {
	var input io.Reader = os.Stdin
	var output io.Writer = os.Stdout

	specPath := flag.String("spec", "", "path to the JSON format specification")
	compress := flag.Bool("z", false, "LZ4-compress the output file")
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

	mesh, objWarn, err := meshfile.DecodeOBJ(input)
	if err != nil {
		if objWarn != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", objWarn))
		}
		fmt.Fprintln(os.Stderr, fmt.Errorf("parse obj: %w", err))
		os.Exit(1)
	}

	var buf bytes.Buffer
	encWarn, err := binmesh.Encode(&buf, &format, mesh)
	if warn := errors.Union(objWarn, encWarn); warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("encode: %w", err))
		os.Exit(1)
	}

	data := buf.Bytes()
	if *compress {
		if data, err = lz4.Encode(nil, data); err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("compress: %w", err))
			os.Exit(1)
		}
	}
	if _, err := output.Write(data); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("write output: %w", err))
		os.Exit(1)
	}
}
