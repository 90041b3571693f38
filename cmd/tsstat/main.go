/*
tsstat computes windowed population-genetics statistics over a tree
sequence given as a JSON node/edge/site/mutation table.

usage: tsstat [ -mode <mode> | -win <policy> | -h | -v ] <treeseq.json> <sets.json> <set>...

flags:

	-mode string
	  	traversal mode [ branch | site | node ] (default "branch")
	-win string
	  	window policy [ whole | trees | sites ] (default "whole")
	-polarised
	  	omit the ancestral/complement allele from the statistic
	-norm
	  	divide each window's value by its genomic width
	-n int
	  	number of parallel processes used by -naive (default GOMAXPROCS)
	-naive
	  	cross-check with the from-scratch reference implementation instead
	-o string
	  	output prefix for the CSV table and PNG plot
	-h	prints this message and exits
	-v	prints version number and exits

examples:

	  diversity within one sample set:
		tsstat -o diversity treeseq.json sets.json pop1

	  divergence between two sample sets, windowed by local tree:
		tsstat -win trees -o divergence treeseq.json sets.json pop1 pop2
*/
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"

	"github.com/evolbioinfo/tsstat"
	"github.com/evolbioinfo/tsstat/stats"
	"github.com/evolbioinfo/tsstat/tseq"
)

const (
	Version    = "v0.1.0"
	ErrMessage = "tsstat encountered an error ::"
)

type args struct {
	mode      string
	window    string
	polarised bool
	normalise bool
	naive     bool
	nprocs    int
	outPrefix string
	tsFile    string
	setsFile  string
	setNames  []string
}

func parseArgs() args {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr,
			"usage: tsstat [ -mode <mode> | -win <policy> | -h | -v ] <treeseq.json> <sets.json> <set>...\n",
			"\n",
			"flags:\n\n",
		)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr,
			"\n",
			"examples:\n\n",
			"  diversity within one sample set:\n",
			"\ttsstat -o diversity treeseq.json sets.json pop1\n\n",
			"  divergence between two sample sets, windowed by local tree:\n",
			"\ttsstat -win trees -o divergence treeseq.json sets.json pop1 pop2\n",
		)
	}
	mode := flag.String("mode", "branch", "traversal `mode` [ branch | site | node ]")
	win := flag.String("win", "whole", "window `policy` [ whole | trees | sites ]")
	polarised := flag.Bool("polarised", false, "omit the ancestral/complement allele from the statistic")
	normalise := flag.Bool("norm", false, "divide each window's value by its genomic width")
	naive := flag.Bool("naive", false, "cross-check with the from-scratch reference implementation")
	nprocs := flag.Int("n", 0, "number of parallel processes used by -naive")
	out := flag.String("o", "tsstat-out", "output `prefix` for the CSV table and PNG plot")
	help := flag.Bool("h", false, "prints this message and exits")
	ver := flag.Bool("v", false, "prints version number and exits")
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *ver {
		fmt.Printf("tsstat version %s\n", Version)
		os.Exit(0)
	}
	if flag.NArg() < 3 {
		parserError("at least three positional arguments required: <treeseq.json> <sets.json> <set>...")
	}
	return args{
		mode:      *mode,
		window:    *win,
		polarised: *polarised,
		normalise: *normalise,
		naive:     *naive,
		nprocs:    *nprocs,
		outPrefix: *out,
		tsFile:    flag.Arg(0),
		setsFile:  flag.Arg(1),
		setNames:  flag.Args()[2:],
	}
}

func parserError(message string) {
	fmt.Fprintln(os.Stderr, message)
	flag.Usage()
	os.Exit(1)
}

func parseMode(s string) (tsstat.Mode, error) {
	switch s {
	case "branch":
		return tsstat.Branch, nil
	case "site":
		return tsstat.Site, nil
	case "node":
		return tsstat.Node, nil
	default:
		return 0, fmt.Errorf("unrecognized mode %q", s)
	}
}

func parseWindow(s string) (tsstat.WindowSpec, error) {
	switch s {
	case "whole":
		return tsstat.WholeSequence(), nil
	case "trees":
		return tsstat.TreeWindows(), nil
	case "sites":
		return tsstat.SiteWindows(), nil
	default:
		return tsstat.WindowSpec{}, fmt.Errorf("unrecognized window policy %q", s)
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	a := parseArgs()
	log.Printf("tsstat version %s", Version)

	ts, err := readTreeSequence(a.tsFile)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	var sampleNodes []int
	for u := 0; u < ts.NumNodes(); u++ {
		if ts.IsSample(u) {
			sampleNodes = append(sampleNodes, u)
		}
	}
	log.Printf("tree sequence: %d nodes, %d samples %v", ts.NumNodes(), len(sampleNodes), sampleNodes)
	sets, err := readSampleSets(ts, a.setsFile, a.setNames)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	for i, s := range sets {
		log.Printf("sample set %d: %d samples %v", i, s.Size(), s.Nodes())
	}
	mode, err := parseMode(a.mode)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	win, err := parseWindow(a.window)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	bounds, _, err := tsstat.ResolveWindows(ts, win)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}

	nprocs := a.nprocs
	if nprocs <= 0 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	opts := tsstat.Options{Polarised: a.polarised, SpanNormalise: a.normalise, NumProcs: nprocs}

	f, width, err := summaryFor(sets)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	W, err := stats.BuildWeights(ts, sets)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}

	log.Printf("running %s mode over %d window(s)...", a.mode, len(bounds)-1)
	var result tsstat.Result
	if a.naive {
		result, err = tsstat.NaiveGeneralStat(ts, W, f, mode, win, opts)
	} else {
		result, err = tsstat.GeneralStat(ts, W, f, mode, win, opts)
	}
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}

	if err := writeResultsToCSV(result, bounds, width, a.outPrefix); err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	if width == 1 && result.NumNodes == 1 {
		if err := tsstat.PlotWindowedStat(result, bounds, "position", a.mode, a.outPrefix); err != nil {
			log.Fatalf("%s %s\n", ErrMessage, err)
		}
	}
}

type treeSeqFile struct {
	SequenceLength float64 `json:"sequence_length"`
	Nodes          []struct {
		Time   float64 `json:"time"`
		Sample bool    `json:"sample"`
	} `json:"nodes"`
	Edges []struct {
		Parent int     `json:"parent"`
		Child  int     `json:"child"`
		Left   float64 `json:"left"`
		Right  float64 `json:"right"`
	} `json:"edges"`
	Sites []struct {
		Position  float64 `json:"position"`
		Ancestral string  `json:"ancestral"`
	} `json:"sites"`
	Mutations []struct {
		Site    int    `json:"site"`
		Node    int    `json:"node"`
		Derived string `json:"derived"`
		Parent  int    `json:"parent"`
	} `json:"mutations"`
}

func readTreeSequence(path string) (*tseq.TreeSequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var raw treeSeqFile
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	nodes := make([]tseq.Node, len(raw.Nodes))
	for i, n := range raw.Nodes {
		nodes[i] = tseq.Node{Time: n.Time, Sample: n.Sample}
	}
	edges := make([]tseq.Edge, len(raw.Edges))
	for i, e := range raw.Edges {
		edges[i] = tseq.Edge{Parent: e.Parent, Child: e.Child, Left: e.Left, Right: e.Right}
	}
	sites := make([]tseq.Site, len(raw.Sites))
	for i, s := range raw.Sites {
		sites[i] = tseq.Site{Position: s.Position, AncestralState: []byte(s.Ancestral)}
	}
	muts := make([]tseq.Mutation, len(raw.Mutations))
	for i, m := range raw.Mutations {
		muts[i] = tseq.Mutation{Site: m.Site, Node: m.Node, DerivedState: []byte(m.Derived), Parent: m.Parent}
	}
	return tseq.NewTreeSequence(nodes, edges, sites, muts, raw.SequenceLength)
}

func readSampleSets(ts *tseq.TreeSequence, path string, names []string) ([]stats.SampleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var raw map[string][]int
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	sets := make([]stats.SampleSet, len(names))
	for i, name := range names {
		nodes, ok := raw[name]
		if !ok {
			return nil, fmt.Errorf("sample set %q not found in %s", name, path)
		}
		set, err := stats.NewSampleSet(ts, nodes)
		if err != nil {
			return nil, fmt.Errorf("sample set %q: %w", name, err)
		}
		sets[i] = set
	}
	return sets, nil
}

// summaryFor picks a convenience statistic from the number of sample sets
// given on the command line, mirroring how diversity/divergence/Y3/F4 are
// just different arities of the same general_stat call.
func summaryFor(sets []stats.SampleSet) (tsstat.SummaryFunc, int, error) {
	switch len(sets) {
	case 1:
		return stats.Diversity(sets[0].Size()), 1, nil
	case 2:
		return stats.Divergence(sets[0].Size(), sets[1].Size()), 1, nil
	case 3:
		return stats.Y3(sets[0].Size(), sets[1].Size(), sets[2].Size()), 1, nil
	case 4:
		return stats.F4(sets[0].Size(), sets[1].Size(), sets[2].Size(), sets[3].Size()), 1, nil
	default:
		return nil, 0, fmt.Errorf("expected 1-4 sample sets, got %d", len(sets))
	}
}

func writeResultsToCSV(result tsstat.Result, bounds []float64, width int, outPrefix string) (err error) {
	f, err := os.Create(fmt.Sprintf("%s.csv", outPrefix))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := csv.NewWriter(f)
	defer w.Flush()
	header := []string{"window_start", "window_end", "node"}
	for j := 0; j < width; j++ {
		header = append(header, fmt.Sprintf("stat_%d", j))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for win := 0; win < result.NumWindows; win++ {
		for node := 0; node < result.NumNodes; node++ {
			row := []string{
				strconv.FormatFloat(bounds[win], 'g', -1, 64),
				strconv.FormatFloat(bounds[win+1], 'g', -1, 64),
				strconv.Itoa(node),
			}
			for j := 0; j < width; j++ {
				row = append(row, strconv.FormatFloat(result.At(win, node, j), 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}
