//go:build ignore

// e2e_pipeline exercises the tokenizer, the heuristic resolver, and the
// strict ISO 8601 resolver in a single run and writes structured results
// to e2e_pipeline.log.
// Run from the project root:
//
//	go run e2e/e2e_pipeline.go
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bissli/opendate/parser"
	"github.com/bissli/opendate/tokenizer"
)

// ---------- constants ----------

const (
	logPath      = "e2e_pipeline.log"
	moduleCount  = 3
	maxDetailLen = 200
	concWorkers  = 8
	concIter     = 100
	separator    = "=========================================================="
	suiteCount   = 7
)

// ---------- test corpus ----------

var corpusDates = []string{
	"Thu Sep 25 10:36:28 2003",
	"2003-09-25T10:49:41",
	"20030925T104941+0300",
	"  July   4 ,  1976   12:01:02   am  ",
	"3rd of May 2001",
	"Wed, July 10, '96",
	"10h36m28.5s",
	"13NOV2017",
	"950404 122212",
	"01/15/2024 10:30 PM",
}

var corpusISO = []string{
	"2024-01-15T10:30:45.123456+05:30",
	"20240115T103045Z",
	"2012-W05-5",
	"2012007",
	"2014",
	"2024-01-15T24:00:00",
}

const corpusFuzzy = "Today is 25 of September of 2003, exactly at 10:49:41 with timezone -03:00."

const corpusProse = `The quarterly report was filed on 2024-01-15 at 10:30 after a
long review. A follow-up meeting is planned for March 1, 2024.`

// ---------- result plumbing ----------

type testResult struct {
	name     string
	module   string
	passed   bool
	duration time.Duration
	detail   string
}

type moduleReport struct {
	name     string
	tests    int
	passed   int
	failed   int
	duration time.Duration
}

// ---------- helpers ----------

func pass(module, name string, start time.Time) testResult {
	return testResult{name: name, module: module, passed: true, duration: time.Since(start)}
}

func fail(module, name, detail string, start time.Time) testResult {
	return testResult{name: name, module: module, passed: false, duration: time.Since(start), detail: truncate(detail, maxDetailLen)}
}

func truncate(s string, maxRunes int) string {
	n := 0
	for i := range s {
		n++
		if n > maxRunes {
			return s[:i] + "..."
		}
	}
	return s
}

func safeRun(module, name string, fn func() testResult) (r testResult) {
	defer func() {
		if p := recover(); p != nil {
			r = fail(module, name, fmt.Sprintf("PANIC: %v", p), time.Now())
		}
	}()
	return fn()
}

// ---------- test suites ----------

func testTokenizer() []testResult {
	const mod = "tokenizer"
	var results []testResult

	results = append(results, safeRun(mod, "reconstruction", func() testResult {
		start := time.Now()
		for _, s := range append(corpusDates, corpusFuzzy, corpusProse) {
			var sb strings.Builder
			for _, t := range tokenizer.Tokenize(s) {
				sb.WriteString(t.Text)
			}
			if sb.String() != s {
				return fail(mod, "reconstruction", fmt.Sprintf("concatenated tokens != input for %q", s), start)
			}
		}
		return pass(mod, "reconstruction", start)
	}))

	results = append(results, safeRun(mod, "offset_invariant", func() testResult {
		start := time.Now()
		for _, s := range append(corpusDates, corpusFuzzy, corpusProse) {
			for _, t := range tokenizer.Tokenize(s) {
				slice := s[t.Start : t.Start+len(t.Text)]
				if slice != t.Text {
					return fail(mod, "offset_invariant",
						fmt.Sprintf("s[%d:]=%q != token.Text=%q", t.Start, slice, t.Text), start)
				}
			}
		}
		return pass(mod, "offset_invariant", start)
	}))

	results = append(results, safeRun(mod, "kind_partition", func() testResult {
		start := time.Now()
		for _, t := range tokenizer.Tokenize(corpusFuzzy) {
			switch t.Kind {
			case tokenizer.Digits, tokenizer.Letters, tokenizer.Separator:
			default:
				return fail(mod, "kind_partition", fmt.Sprintf("unknown kind %v for %q", t.Kind, t.Text), start)
			}
		}
		return pass(mod, "kind_partition", start)
	}))

	return results
}

func testHeuristic() []testResult {
	const mod = "parser"
	var results []testResult

	results = append(results, safeRun(mod, "corpus_parses", func() testResult {
		start := time.Now()
		for _, s := range corpusDates {
			r, err := parser.Parse(s)
			if err != nil {
				return fail(mod, "corpus_parses", fmt.Sprintf("%q: %v", s, err), start)
			}
			if r.Set == 0 {
				return fail(mod, "corpus_parses", fmt.Sprintf("%q: empty result", s), start)
			}
		}
		return pass(mod, "corpus_parses", start)
	}))

	results = append(results, safeRun(mod, "date_command_fields", func() testResult {
		start := time.Now()
		r, err := parser.Parse("Thu Sep 25 10:36:28 2003")
		if err != nil {
			return fail(mod, "date_command_fields", err.Error(), start)
		}
		if r.Year != 2003 || r.Month != 9 || r.Day != 25 || r.Hour != 10 || r.Minute != 36 || r.Second != 28 {
			return fail(mod, "date_command_fields", r.String(), start)
		}
		return pass(mod, "date_command_fields", start)
	}))

	results = append(results, safeRun(mod, "dayfirst_yearfirst", func() testResult {
		start := time.Now()
		type combo struct {
			cfg     parser.Config
			y, m, d int
		}
		combos := []combo{
			{parser.Config{}, 2007, 9, 1},
			{parser.Config{Yearfirst: true}, 2009, 1, 7},
			{parser.Config{Dayfirst: true}, 2007, 1, 9},
			{parser.Config{Dayfirst: true, Yearfirst: true}, 2009, 7, 1},
		}
		for _, c := range combos {
			r, err := c.cfg.Parse("090107")
			if err != nil {
				return fail(mod, "dayfirst_yearfirst", err.Error(), start)
			}
			if r.Year != c.y || r.Month != c.m || r.Day != c.d {
				return fail(mod, "dayfirst_yearfirst",
					fmt.Sprintf("%+v: got %s", c.cfg, r), start)
			}
		}
		return pass(mod, "dayfirst_yearfirst", start)
	}))

	results = append(results, safeRun(mod, "strict_rejects_prose", func() testResult {
		start := time.Now()
		if _, err := parser.Parse(corpusProse); err == nil {
			return fail(mod, "strict_rejects_prose", "prose accepted without fuzzy", start)
		}
		return pass(mod, "strict_rejects_prose", start)
	}))

	return results
}

func testFuzzy() []testResult {
	const mod = "parser"
	var results []testResult

	results = append(results, safeRun(mod, "fuzzy_sentence", func() testResult {
		start := time.Now()
		r, err := parser.Config{Fuzzy: true}.Parse(corpusFuzzy)
		if err != nil {
			return fail(mod, "fuzzy_sentence", err.Error(), start)
		}
		if r.Year != 2003 || r.Month != 9 || r.Day != 25 || r.Hour != 10 || r.TZOffset != -3*3600 {
			return fail(mod, "fuzzy_sentence", r.String(), start)
		}
		return pass(mod, "fuzzy_sentence", start)
	}))

	results = append(results, safeRun(mod, "skipped_tokens_cover_input", func() testResult {
		start := time.Now()
		_, skipped, err := parser.Config{Fuzzy: true}.ParseWithTokens(corpusFuzzy)
		if err != nil {
			return fail(mod, "skipped_tokens_cover_input", err.Error(), start)
		}
		if len(skipped) == 0 {
			return fail(mod, "skipped_tokens_cover_input", "no skipped fragments", start)
		}
		for _, frag := range skipped {
			if !strings.Contains(corpusFuzzy, frag) {
				return fail(mod, "skipped_tokens_cover_input",
					fmt.Sprintf("fragment %q not in input", frag), start)
			}
		}
		return pass(mod, "skipped_tokens_cover_input", start)
	}))

	return results
}

func testISO() []testResult {
	const mod = "isoparser"
	var results []testResult

	results = append(results, safeRun(mod, "corpus_parses", func() testResult {
		start := time.Now()
		for _, s := range corpusISO {
			r, err := parser.ISOParse(s)
			if err != nil {
				return fail(mod, "corpus_parses", fmt.Sprintf("%q: %v", s, err), start)
			}
			if !r.HasDate() {
				return fail(mod, "corpus_parses", fmt.Sprintf("%q: no date", s), start)
			}
		}
		return pass(mod, "corpus_parses", start)
	}))

	results = append(results, safeRun(mod, "week_date", func() testResult {
		start := time.Now()
		r, err := parser.ISOParse("2012-W05-5")
		if err != nil {
			return fail(mod, "week_date", err.Error(), start)
		}
		if r.Year != 2012 || r.Month != 2 || r.Day != 3 {
			return fail(mod, "week_date", r.String(), start)
		}
		return pass(mod, "week_date", start)
	}))

	results = append(results, safeRun(mod, "rejects_loose_input", func() testResult {
		start := time.Now()
		for _, s := range []string{"Sep 25 2003", "201401", "2012W05-5"} {
			if _, err := parser.ISOParse(s); err == nil {
				return fail(mod, "rejects_loose_input", fmt.Sprintf("%q accepted", s), start)
			}
		}
		return pass(mod, "rejects_loose_input", start)
	}))

	return results
}

func testJSON() []testResult {
	const mod = "parser"
	var results []testResult

	results = append(results, safeRun(mod, "json_roundtrip", func() testResult {
		start := time.Now()
		for _, s := range corpusDates {
			r, err := parser.Parse(s)
			if err != nil {
				return fail(mod, "json_roundtrip", fmt.Sprintf("%q: %v", s, err), start)
			}
			data, err := json.Marshal(r)
			if err != nil {
				return fail(mod, "json_roundtrip", err.Error(), start)
			}
			var back parser.Result
			if err := json.Unmarshal(data, &back); err != nil {
				return fail(mod, "json_roundtrip", err.Error(), start)
			}
			if back != r {
				return fail(mod, "json_roundtrip",
					fmt.Sprintf("%q: %s != %s", s, back, r), start)
			}
		}
		return pass(mod, "json_roundtrip", start)
	}))

	return results
}

func testConcurrent() []testResult {
	const mod = "parser"
	var results []testResult

	results = append(results, safeRun(mod, "concurrent_parse", func() testResult {
		start := time.Now()
		var wg sync.WaitGroup
		errs := make(chan string, concWorkers)
		for w := 0; w < concWorkers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < concIter; i++ {
					s := corpusDates[i%len(corpusDates)]
					if _, err := parser.Parse(s); err != nil {
						select {
						case errs <- fmt.Sprintf("%q: %v", s, err):
						default:
						}
						return
					}
					iso := corpusISO[i%len(corpusISO)]
					if _, err := parser.ISOParse(iso); err != nil {
						select {
						case errs <- fmt.Sprintf("%q: %v", iso, err):
						default:
						}
						return
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		if msg, ok := <-errs; ok {
			return fail(mod, "concurrent_parse", msg, start)
		}
		return pass(mod, "concurrent_parse", start)
	}))

	return results
}

func testPipeline() []testResult {
	const mod = "pipeline"
	var results []testResult

	results = append(results, safeRun(mod, "tokenize_then_parse", func() testResult {
		start := time.Now()
		for _, s := range corpusDates {
			if len(tokenizer.Tokenize(s)) == 0 {
				return fail(mod, "tokenize_then_parse", fmt.Sprintf("%q: no tokens", s), start)
			}
			if _, err := parser.Parse(s); err != nil {
				return fail(mod, "tokenize_then_parse", fmt.Sprintf("%q: %v", s, err), start)
			}
		}
		return pass(mod, "tokenize_then_parse", start)
	}))

	results = append(results, safeRun(mod, "heuristic_agrees_with_iso", func() testResult {
		start := time.Now()
		for _, s := range []string{"2003-09-25T10:49:41", "2024-01-15", "1999-12-31T23:59:59"} {
			hr, err := parser.Parse(s)
			if err != nil {
				return fail(mod, "heuristic_agrees_with_iso", fmt.Sprintf("heuristic %q: %v", s, err), start)
			}
			ir, err := parser.ISOParse(s)
			if err != nil {
				return fail(mod, "heuristic_agrees_with_iso", fmt.Sprintf("iso %q: %v", s, err), start)
			}
			if hr.Year != ir.Year || hr.Month != ir.Month || hr.Day != ir.Day {
				return fail(mod, "heuristic_agrees_with_iso",
					fmt.Sprintf("%q: %s vs %s", s, hr, ir), start)
			}
		}
		return pass(mod, "heuristic_agrees_with_iso", start)
	}))

	return results
}

// ---------- orchestration ----------

func runAllSuites() []testResult {
	suites := []func() []testResult{
		testTokenizer,
		testHeuristic,
		testFuzzy,
		testISO,
		testJSON,
		testConcurrent,
		testPipeline,
	}

	var all []testResult
	for _, suite := range suites {
		all = append(all, suite()...)
	}
	return all
}

func buildReports(results []testResult) []moduleReport {
	order := make(map[string]int)
	var reports []moduleReport

	for _, r := range results {
		idx, exists := order[r.module]
		if !exists {
			idx = len(reports)
			order[r.module] = idx
			reports = append(reports, moduleReport{name: r.module})
		}
		reports[idx].tests++
		reports[idx].duration += r.duration
		if r.passed {
			reports[idx].passed++
		} else {
			reports[idx].failed++
		}
	}
	return reports
}

func writeLog(path string, results []testResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)

	now := time.Now().UTC().Format(time.RFC3339)
	goVer := runtime.Version()
	platform := runtime.GOOS + "/" + runtime.GOARCH

	fmt.Fprintln(bw, separator)
	fmt.Fprintln(bw, "  opendate E2E Pipeline Test")
	fmt.Fprintf(bw, "  Timestamp: %s\n", now)
	fmt.Fprintf(bw, "  Go: %s  OS: %s\n", goVer, platform)
	fmt.Fprintf(bw, "  Modules: %d\n", moduleCount)
	fmt.Fprintln(bw, separator)
	fmt.Fprintln(bw)

	reports := buildReports(results)
	var totalDuration time.Duration
	for _, rep := range reports {
		totalDuration += rep.duration
	}

	// Per-module sections.
	for _, rep := range reports {
		fmt.Fprintf(bw, "[%s] %d tests | %d passed | %d failed | %s\n",
			rep.name, rep.tests, rep.passed, rep.failed, rep.duration.Round(time.Microsecond))
		for _, r := range results {
			if r.module != rep.name {
				continue
			}
			status := "PASS"
			if !r.passed {
				status = "FAIL"
			}
			fmt.Fprintf(bw, "  %-6s %-45s %s\n", status, r.name, r.duration.Round(time.Microsecond))
		}
		fmt.Fprintln(bw)
	}

	// Failures section.
	var failures []testResult
	for _, r := range results {
		if !r.passed {
			failures = append(failures, r)
		}
	}
	if len(failures) > 0 {
		fmt.Fprintln(bw, "--- FAILURES ---")
		for _, r := range failures {
			fmt.Fprintf(bw, "  FAIL  [%s] %-40s %s\n", r.module, r.name, r.duration.Round(time.Microsecond))
			if r.detail != "" {
				for line := range strings.SplitSeq(r.detail, "\n") {
					fmt.Fprintf(bw, "        %s\n", line)
				}
			}
		}
		fmt.Fprintln(bw)
	}

	// Summary.
	totalPassed := 0
	totalFailed := 0
	for _, r := range results {
		if r.passed {
			totalPassed++
		} else {
			totalFailed++
		}
	}

	fmt.Fprintln(bw, separator)
	fmt.Fprintf(bw, "  SUMMARY: %d tests | %d passed | %d failed | %s\n",
		len(results), totalPassed, totalFailed, totalDuration.Round(time.Microsecond))
	fmt.Fprintln(bw, separator)

	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(results []testResult) {
	reports := buildReports(results)
	totalPassed := 0
	totalFailed := 0
	var totalDuration time.Duration

	for _, rep := range reports {
		totalPassed += rep.passed
		totalFailed += rep.failed
		totalDuration += rep.duration

		status := "OK"
		if rep.failed > 0 {
			status = "FAIL"
		}
		log.Printf("  %-12s %d/%d %s", rep.name, rep.passed, rep.tests, status)
	}

	log.Printf("")
	log.Printf("  %d tests | %d passed | %d failed | %s",
		len(results), totalPassed, totalFailed, totalDuration.Round(time.Microsecond))

	for _, r := range results {
		if !r.passed {
			log.Printf("  FAIL [%s] %s: %s", r.module, r.name, r.detail)
		}
	}
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("[e2e] ")

	log.Printf("starting E2E pipeline test (%d modules, %d suites)", moduleCount, suiteCount)
	totalStart := time.Now()

	results := runAllSuites()

	log.Printf("completed in %s", time.Since(totalStart).Round(time.Microsecond))
	log.Printf("")

	printSummary(results)

	if err := writeLog(logPath, results); err != nil {
		log.Fatalf("cannot write log: %v", err)
	}
	log.Printf("log written to %s", logPath)

	for _, r := range results {
		if !r.passed {
			os.Exit(1)
		}
	}
}
