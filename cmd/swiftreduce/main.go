package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blacktop/go-swiftbind/internal/logging"
	"github.com/blacktop/go-swiftbind/pkg/decl"
	"github.com/blacktop/go-swiftbind/pkg/reduction"
	"github.com/blacktop/go-swiftbind/swift/demangle"
)

func main() {
	module := flag.String("module", "", "name of the module exporting the symbols")
	workers := flag.Int("workers", 0, "number of reduction goroutines (0 = unlimited)")
	showDemangled := flag.Bool("demangle", false, "print the demangled symbol next to each reduction")
	showDecls := flag.Bool("decl", false, "print the folded module declarations instead of each reduction")
	flag.Parse()

	if *module == "" {
		fmt.Fprintln(os.Stderr, "usage: swiftreduce -module NAME [symbol ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	symbols := flag.Args()
	if len(symbols) == 0 {
		var err error
		if symbols, err = readSymbols(os.Stdin); err != nil {
			fmt.Fprintf(os.Stderr, "failed to read symbols: %v\n", err)
			os.Exit(1)
		}
	}

	log := logging.New()
	defer log.Sync()
	reducer := reduction.New(*module, reduction.WithLogger(log))

	if *showDecls {
		b := decl.NewBuilder(reducer, decl.WithLogger(log))
		if err := b.AddAll(symbols, *workers); err != nil {
			fmt.Fprintf(os.Stderr, "aborting: %v\n", err)
			os.Exit(1)
		}
		printModule(os.Stdout, b.Module())
		return
	}

	failed := false
	for _, red := range reducer.ReduceAll(symbols, *workers) {
		if rerr, ok := red.(*reduction.ReductionError); ok && rerr.Severity == reduction.High {
			failed = true
		}
		line := red.MangledSymbol() + "\t" + reduction.String(red)
		if *showDemangled {
			line += "\t" + demangle.NormalizeIdentifier(red.MangledSymbol())
		}
		fmt.Println(line)
	}
	if failed {
		os.Exit(1)
	}
}

// readSymbols returns the unique non-empty lines of r in order.
func readSymbols(r io.Reader) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		sym := strings.TrimSpace(scanner.Text())
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		result = append(result, sym)
	}
	return result, scanner.Err()
}

func printModule(w io.Writer, m *decl.ModuleDecl) {
	fmt.Fprintf(w, "module %s\n", m.Name)
	for _, fn := range m.Functions {
		fmt.Fprintf(w, "  func %s\n", fn.Function)
	}
	for _, t := range m.Types {
		fmt.Fprintf(w, "  %s %s", t.Type.Kind, t.Type.Name)
		if t.MetadataAccessor != "" {
			fmt.Fprintf(w, " (accessor %s)", t.MetadataAccessor)
		}
		fmt.Fprintln(w)
		for _, c := range t.Conformances {
			fmt.Fprintf(w, "    conforms to %s\n", c.Protocol)
		}
		for _, fn := range t.Methods {
			fmt.Fprintf(w, "    %s\n", fn.Function)
		}
		for _, fn := range t.DispatchThunks {
			fmt.Fprintf(w, "    dispatch thunk %s\n", fn.Function)
		}
		for _, fn := range t.Extensions {
			fmt.Fprintf(w, "    extension %s\n", fn.Function)
		}
	}
	for _, ext := range m.Extensions {
		fmt.Fprintf(w, "  extension %s\n", ext.Type.Name)
		for _, c := range ext.Conformances {
			fmt.Fprintf(w, "    conforms to %s\n", c.Protocol)
		}
		for _, fn := range ext.Members {
			fmt.Fprintf(w, "    %s\n", fn.Function)
		}
	}
	for _, e := range m.Errors {
		fmt.Fprintf(w, "  skipped %s\n", e)
	}
}
