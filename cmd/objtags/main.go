// objtags lists the tag headers of a flat sequence of tagged records,
// skipping every record body. It reads a region of a file (or stdin) and
// prints one line per record: offset, flags, body length and header length.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/oy3o/objstream"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	offset  int64
	length  int64
	limit   int
	verbose bool
}

func run(args []string, stdout io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("objtags", pflag.ContinueOnError)
	flagSet.Int64Var(&opts.offset, "offset", 0, "byte offset of the region within the file")
	flagSet.Int64Var(&opts.length, "length", -1, "length of the region in bytes (default: rest of the file)")
	flagSet.IntVar(&opts.limit, "limit", 0, "stop after this many records (0: no limit)")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log buffer fills to stderr")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if flagSet.NArg() != 1 {
		printHelp(flagSet)
		return errors.New("expected exactly one input path")
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	source, length, closeSource, err := openRegion(flagSet.Arg(0), opts.offset, opts.length)
	if err != nil {
		return err
	}
	defer closeSource()

	return listTags(source, length, opts, stdout, logger)
}

// openRegion opens path and positions it at offset. "-" reads stdin, which
// requires an explicit length.
func openRegion(path string, offset, length int64) (io.Reader, uint32, func(), error) {
	if offset < 0 {
		return nil, 0, nil, errors.Errorf("negative offset %d", offset)
	}
	if path == "-" {
		if length < 0 {
			return nil, 0, nil, errors.New("--length is required when reading stdin")
		}
		if _, err := io.CopyN(io.Discard, os.Stdin, offset); err != nil {
			return nil, 0, nil, errors.Wrap(err, "skip to offset")
		}
		region, err := regionLength(length)
		return os.Stdin, region, func() {}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, 0, nil, errors.Wrap(err, "open input")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, nil, errors.Wrap(err, "stat input")
	}
	if offset > info.Size() {
		file.Close()
		return nil, 0, nil, errors.Errorf("offset %d beyond end of %s (%d bytes)", offset, path, info.Size())
	}
	if length < 0 || offset+length > info.Size() {
		length = info.Size() - offset
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		file.Close()
		return nil, 0, nil, errors.Wrap(err, "seek to offset")
	}
	region, err := regionLength(length)
	if err != nil {
		file.Close()
		return nil, 0, nil, err
	}
	return file, region, func() { file.Close() }, nil
}

func regionLength(length int64) (uint32, error) {
	if length > math.MaxUint32 {
		return 0, errors.Errorf("region of %d bytes exceeds %d", length, uint32(math.MaxUint32))
	}
	return uint32(length), nil
}

func listTags(source io.Reader, length uint32, opts options, stdout io.Writer, logger *slog.Logger) error {
	in, err := objstream.NewInputStream(source, length)
	if err != nil {
		return err
	}
	defer in.Close()
	in.WithLogger(logger)

	table := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(table, "OFFSET\tFLAGS\tLENGTH\tHEADER")

	for records := 0; !in.Exhausted() && (opts.limit == 0 || records < opts.limit); records++ {
		offset := opts.offset + in.Count()
		tag, err := in.ReadTag()
		if err != nil {
			table.Flush()
			return errors.Wrapf(err, "read tag at offset %d", offset)
		}
		in.Mark()
		if err := in.Skip(tag.Length); err != nil {
			table.Flush()
			return errors.Wrapf(err, "skip body of record at offset %d (length %d)", offset, tag.Length)
		}
		fmt.Fprintf(table, "%d\t%d\t%d\t%d\n", offset, tag.Flags, tag.Length, tag.HeaderLen)
	}
	return table.Flush()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `objtags lists the tag headers of a sequence of tagged records.

Usage: objtags [flags] <path|->

Flags:
%s`, flagSet.FlagUsages())
}
