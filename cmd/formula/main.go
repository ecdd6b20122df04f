// Command formula is an interactive front end for the formula engine. It
// evaluates a single expression, batch-checks a file of expressions, or
// starts a REPL.
//
// Usage:
//
//	formula -vars x,y -e "sqrt(x^2+y^2)" 3 4
//	formula -vars x -check expressions.txt
//	formula -vars x,y
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/risor-io/formula"
	"github.com/risor-io/formula/errz"
)

const promptPrefix = ">>> "

var (
	red  = color.New(color.FgRed).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

var (
	varsFlag    string
	evalFlag    string
	checkFlag   string
	mu0Flag     float64
	verboseFlag bool
)

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func main() {
	flag.StringVar(&varsFlag, "vars", "", "comma-separated variable names")
	flag.StringVar(&evalFlag, "e", "", "expression to evaluate; positional args supply the variable values")
	flag.StringVar(&checkFlag, "check", "", "file of expressions to syntax-check, one per line")
	flag.Float64Var(&mu0Flag, "mu0", 1, "value of the named constant mu")
	flag.BoolVar(&verboseFlag, "v", false, "enable debug logging")
	flag.Parse()

	level := zerolog.WarnLevel
	if verboseFlag {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	vars := splitVars(varsFlag)

	switch {
	case checkFlag != "":
		if err := runCheck(checkFlag, vars, logger); err != nil {
			fatal(err)
		}
	case evalFlag != "":
		runEval(evalFlag, vars, flag.Args(), logger)
	default:
		if err := runREPL(vars, logger); err != nil {
			fatal(err)
		}
	}
}

func splitVars(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	vars := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			vars = append(vars, p)
		}
	}
	return vars
}

func newRegistry(logger zerolog.Logger) *formula.Registry {
	r, err := formula.New(1,
		formula.WithMu0(mu0Flag),
		formula.WithLogger(logger),
		formula.WithVerbose(true),
		formula.WithOutput(os.Stderr),
	)
	if err != nil {
		fatal(err)
	}
	return r
}

// runCheck syntax-checks every line of the file that is neither blank nor
// a # comment and reports all failures together.
func runCheck(path string, vars []string, logger zerolog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := newRegistry(logger)
	defer r.Close()

	var result *multierror.Error
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := r.Check(line, vars); err != nil {
			result = multierror.Append(result, fmt.Errorf("line %d: %w", lineNo, err))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	fmt.Printf("%s: all expressions ok\n", path)
	return nil
}

// runEval compiles the expression and evaluates it once against the
// positional values.
func runEval(text string, vars []string, args []string, logger zerolog.Logger) {
	if len(args) != len(vars) {
		fatal(fmt.Sprintf("expected %d value(s) for variables %v, got %d",
			len(vars), vars, len(args)))
	}
	values := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			fatal(fmt.Sprintf("invalid value for %s: %q", vars[i], a))
		}
		values[i] = v
	}

	r := newRegistry(logger)
	defer r.Close()
	if err := r.Parse(1, text, vars); err != nil {
		os.Exit(1)
	}
	result := r.Evaluate(1, values)
	if code := r.EvalErr(); code != errz.EvalOK {
		fatal(fmt.Sprintf("evaluation error %d: %s", int(code), r.EvalErrMsg()))
	}
	fmt.Println(result)
}

type repl struct {
	registry *formula.Registry
	vars     []string
	values   []float64
	out      io.Writer
}

func runREPL(vars []string, logger zerolog.Logger) error {
	r := &repl{
		registry: newRegistry(logger),
		vars:     vars,
		values:   make([]float64, len(vars)),
		out:      os.Stdout,
	}
	defer r.registry.Close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, ".formula_history")
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	r.printInfo()
	for {
		input, err := line.Prompt(promptPrefix)
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				break
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == ":quit" || input == ":exit" {
			break
		}
		r.execute(input)
	}

	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}

func (r *repl) printInfo() {
	fmt.Fprintf(r.out, "formula repl, variables: %v\n", r.vars)
	fmt.Fprintln(r.out, "commands: :set <var> <value>, :vars, :mu0 <value>, :dis <expr>, :quit")
}

func (r *repl) execute(input string) {
	if strings.HasPrefix(input, ":") {
		r.command(input)
		return
	}
	if err := r.registry.Parse(1, input, r.vars); err != nil {
		return // diagnostic already printed by the verbose registry
	}
	result := r.registry.Evaluate(1, r.values)
	if code := r.registry.EvalErr(); code != errz.EvalOK {
		fmt.Fprintf(r.out, "%s\n", red(fmt.Sprintf("evaluation error %d: %s",
			int(code), r.registry.EvalErrMsg())))
		return
	}
	fmt.Fprintln(r.out, bold(strconv.FormatFloat(result, 'g', -1, 64)))
}

func (r *repl) command(input string) {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":vars":
		for i, name := range r.vars {
			fmt.Fprintf(r.out, "%s = %v\n", name, r.values[i])
		}
		fmt.Fprintf(r.out, "mu0 = %v\n", r.registry.Mu0())
	case ":set":
		if len(fields) != 3 {
			fmt.Fprintln(r.out, red("usage: :set <var> <value>"))
			return
		}
		idx := -1
		for i, name := range r.vars {
			if name == fields[1] {
				idx = i
				break
			}
		}
		if idx < 0 {
			fmt.Fprintln(r.out, red(fmt.Sprintf("unknown variable %q", fields[1])))
			return
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			fmt.Fprintln(r.out, red(fmt.Sprintf("invalid value %q", fields[2])))
			return
		}
		r.values[idx] = v
	case ":mu0":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, red("usage: :mu0 <value>"))
			return
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			fmt.Fprintln(r.out, red(fmt.Sprintf("invalid value %q", fields[1])))
			return
		}
		r.registry.SetMu0(v)
	case ":dis":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, red("usage: :dis <expr>"))
			return
		}
		expr := strings.TrimSpace(strings.TrimPrefix(input, ":dis"))
		program, err := formula.Compile(expr, r.vars,
			formula.WithMu0(r.registry.Mu0()),
			formula.WithVerbose(true),
			formula.WithOutput(os.Stderr),
		)
		if err != nil {
			return
		}
		fmt.Fprint(r.out, program.Code().Disassemble())
	default:
		fmt.Fprintln(r.out, red(fmt.Sprintf("unknown command %s", fields[0])))
	}
}
