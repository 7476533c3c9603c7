package main

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/lionweb-community/lionweb-dev-tools/internal/builder"
	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/config"
	"github.com/lionweb-community/lionweb-dev-tools/internal/diff"
	"github.com/lionweb-community/lionweb-dev-tools/internal/formatter"
	"github.com/lionweb-community/lionweb-dev-tools/internal/generator"
	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
	"github.com/lionweb-community/lionweb-dev-tools/internal/logger"
	"github.com/lionweb-community/lionweb-dev-tools/internal/lsp"
	"github.com/lionweb-community/lionweb-dev-tools/internal/report"
	"github.com/lionweb-community/lionweb-dev-tools/internal/validator"
	"github.com/lionweb-community/lionweb-dev-tools/internal/visualizer"
)

var version = "dev"

func usage() {
	logger.Println("Usage: lwdt [-q] <command> [arguments]")
	logger.Println("Commands: check, validate, diff, extract, diagram, types, fmt, build, lsp, history, init")
	logger.Println("  check [-meta] [-db path] <model> [languages...]")
	logger.Println("  validate <files...>")
	logger.Println("  diff [-o text|json|yaml] [-v] <a> <b>")
	logger.Println("  extract <files...>")
	logger.Println("  diagram [-serve] <language files...>")
	logger.Println("  types [-sealed] <language file> [dependencies...]")
	logger.Println("  fmt <files...>")
	logger.Println("  build [-o output_file] <input_files...>")
	logger.Println("  lsp [-visualize]")
	logger.Println("  history -db path [-n count] [-run id] [-prune keep]")
	logger.Println("  init")
}

func main() {
	argv := os.Args[1:]
	if len(argv) > 0 && argv[0] == "-q" {
		logger.SetQuiet(true)
		argv = argv[1:]
	}
	if len(argv) < 1 {
		usage()
		os.Exit(1)
	}

	command := argv[0]
	if command == "init" {
		runInit()
		return
	}

	cfg, err := config.LoadFull(".")
	if err != nil {
		logger.Fatalf("Error loading configuration: %v", err)
	}

	args := argv[1:]
	switch command {
	case "check":
		runCheck(cfg, args)
	case "validate":
		runValidate(cfg, args)
	case "diff":
		runDiff(cfg, args)
	case "extract":
		runExtract(args)
	case "diagram":
		runDiagram(cfg, args)
	case "types":
		runTypes(args)
	case "fmt":
		runFmt(args)
	case "build":
		runBuild(args)
	case "lsp":
		runLSP(cfg, args)
	case "history":
		runHistory(cfg, args)
	default:
		logger.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

// options holds the flags of one command. Flags taking a value consume the
// following argument.
type options struct {
	values map[string]string
	bools  map[string]bool
	rest   []string
}

func parseArgs(command string, args []string, valued []string, switches []string) options {
	o := options{values: map[string]string{}, bools: map[string]bool{}}
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case slices.Contains(valued, a):
			if i+1 >= len(args) {
				logger.Fatalf("Error: %s %s requires a value", command, a)
			}
			o.values[a] = args[i+1]
			i++
		case slices.Contains(switches, a):
			o.bools[a] = true
		case strings.HasPrefix(a, "-") && a != "-":
			logger.Fatalf("Error: unknown flag %s for %s", a, command)
		default:
			o.rest = append(o.rest, a)
		}
	}
	return o
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newPrinter(cfg *config.Config) *formatter.Printer {
	return formatter.NewPrinter(os.Stdout, formatter.UseColor(cfg.Color, os.Stdout))
}

func runCheck(cfg *config.Config, args []string) {
	o := parseArgs("check", args, []string{"-db"}, []string{"-meta"})
	if len(o.rest) < 1 {
		logger.Println("Usage: lwdt check [-meta] [-db path] <model> [languages...]")
		os.Exit(1)
	}
	modelPath := o.rest[0]
	languagePaths := o.rest[1:]
	if len(languagePaths) == 0 {
		languagePaths = cfg.Languages
	}

	opts := cfg.ValidatorOptions()
	p := newPrinter(cfg)
	var all []validator.Issue

	p.Header("===== Language errors ======")
	var languageChunks []*chunk.Chunk
	for _, path := range languagePaths {
		doc, err := chunk.ReadFile(path)
		if err != nil {
			logger.Printf("Error reading %s: %v\n", path, err)
			continue
		}
		var res validator.Result
		if o.bools["-meta"] {
			meta := language.MetaRegistry()
			metaOpts := opts
			metaOpts.References.External = meta.KnownID
			res = validator.ValidateAll(doc, meta, metaOpts)
		} else {
			res = validator.ValidateAll(doc, nil, opts)
		}
		p.Issues(res.Issues)
		all = append(all, res.Issues...)
		if doc.Kind == chunk.KindChunk {
			languageChunks = append(languageChunks, doc.Chunk)
		}
	}

	reg, err := language.DeserializeRegistry(languageChunks...)
	if err != nil {
		logger.Printf("Error reading language definitions: %v\n", err)
		reg = language.NewRegistry()
	}

	p.Header("===== Model errors ======")
	doc, err := chunk.ReadFile(modelPath)
	if err != nil {
		logger.Fatalf("Error reading %s: %v", modelPath, err)
	}
	opts.References.External = reg.KnownID
	res := validator.ValidateAll(doc, reg, opts)
	p.Issues(res.Issues)
	all = append(all, res.Issues...)

	if len(all) > 0 {
		logger.Printf("Found %d issues.\n", len(all))
	} else {
		logger.Println("No issues found.")
	}

	dbPath := o.values["-db"]
	if dbPath == "" {
		dbPath = cfg.ReportDB
	}
	if dbPath != "" {
		recordRun(dbPath, modelPath, languagePaths, all)
	}
}

func recordRun(dbPath, model string, languages []string, issues []validator.Issue) {
	store, err := report.Open(dbPath)
	if err != nil {
		logger.Printf("Error opening %s: %v\n", dbPath, err)
		return
	}
	defer store.Close()
	id, err := store.RecordRun(context.Background(), model, languages, issues)
	if err != nil {
		logger.Printf("Error recording run: %v\n", err)
		return
	}
	logger.Printf("Recorded run %d in %s\n", id, dbPath)
}

func runValidate(cfg *config.Config, args []string) {
	if len(args) < 1 {
		logger.Println("Usage: lwdt validate <files...>")
		os.Exit(1)
	}
	opts := cfg.ValidatorOptions()
	p := newPrinter(cfg)
	total := 0
	for _, file := range args {
		doc, err := chunk.ReadFile(file)
		if err != nil {
			logger.Printf("Error reading %s: %v\n", file, err)
			continue
		}
		res := validator.ValidateAll(doc, nil, opts)
		p.Header("===== " + file + " ======")
		p.Issues(res.Issues)
		total += len(res.Issues)
	}
	if total > 0 {
		logger.Printf("Found %d issues.\n", total)
	} else {
		logger.Println("No issues found.")
	}
}

func runDiff(cfg *config.Config, args []string) {
	o := parseArgs("diff", args, []string{"-o"}, []string{"-v"})
	if len(o.rest) != 2 {
		logger.Println("Usage: lwdt diff [-o text|json|yaml] [-v] <a> <b>")
		os.Exit(1)
	}
	format := cfg.Diff.Format
	if f, ok := o.values["-o"]; ok {
		format = f
	}

	a, err := chunk.ReadFile(o.rest[0])
	if err != nil {
		logger.Fatalf("Error reading %s: %v", o.rest[0], err)
	}
	b, err := chunk.ReadFile(o.rest[1])
	if err != nil {
		logger.Fatalf("Error reading %s: %v", o.rest[1], err)
	}
	res := diff.DiffDocuments(a, b)

	switch format {
	case "text":
		newPrinter(cfg).Diff(res, o.bools["-v"])
	case "json":
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			logger.Fatalf("Error encoding diff: %v", err)
		}
		os.Stdout.Write(append(out, '\n'))
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			logger.Fatalf("Error encoding diff: %v", err)
		}
		enc.Close()
	default:
		logger.Fatalf("Error: unknown diff format %q", format)
	}
}

func runExtract(args []string) {
	if len(args) < 1 {
		logger.Println("Usage: lwdt extract <files...>")
		os.Exit(1)
	}
	for _, file := range args {
		written, err := builder.Extract(file)
		if err != nil {
			logger.Printf("Error extracting %s: %v\n", file, err)
			continue
		}
		for _, w := range written {
			logger.Printf("Wrote %s\n", w)
		}
	}
}

// loadLanguages deserializes every file and returns the languages of each
// file together with a registry holding all of them.
func loadLanguages(files []string) ([][]*language.Language, *language.Registry) {
	perFile := make([][]*language.Language, len(files))
	reg := language.NewRegistry()
	for i, file := range files {
		doc, err := chunk.ReadFile(file)
		if err != nil {
			logger.Fatalf("Error reading %s: %v", file, err)
		}
		if doc.Kind != chunk.KindChunk {
			logger.Fatalf("Error: %s is not a chunk", file)
		}
		langs, err := language.Deserialize(doc.Chunk)
		if err != nil {
			logger.Fatalf("Error reading language %s: %v", file, err)
		}
		perFile[i] = langs
		reg.Register(langs...)
	}
	return perFile, reg
}

func runDiagram(cfg *config.Config, args []string) {
	o := parseArgs("diagram", args, []string{"-port"}, []string{"-serve"})
	if len(o.rest) < 1 {
		logger.Println("Usage: lwdt diagram [-serve] [-port n] <language files...>")
		os.Exit(1)
	}
	perFile, reg := loadLanguages(o.rest)

	if o.bools["-serve"] {
		port := cfg.Visualizer.Port
		if s, ok := o.values["-port"]; ok {
			n, err := strconv.Atoi(s)
			if err != nil {
				logger.Fatalf("Error: invalid port %q", s)
			}
			port = n
		}
		v := visualizer.New(port)
		v.SetRegistry(reg)
		ctx, cancel := signalContext()
		defer cancel()
		if err := v.ListenAndServe(ctx); err != nil {
			logger.Fatalf("Visualizer error: %v", err)
		}
		return
	}

	for i, file := range o.rest {
		base := strings.TrimSuffix(file, filepath.Ext(file))
		for _, l := range perFile[i] {
			name := base
			if len(perFile[i]) > 1 {
				name = base + "." + l.Key
			}
			writeOutput(name+".mmd", generator.Mermaid(l, reg))
			writeOutput(name+".puml", generator.PlantUML(l, reg))
		}
	}
}

func writeOutput(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		logger.Printf("Error writing %s: %v\n", path, err)
		return
	}
	logger.Printf("Wrote %s\n", path)
}

func runTypes(args []string) {
	o := parseArgs("types", args, nil, []string{"-sealed"})
	if len(o.rest) < 1 {
		logger.Println("Usage: lwdt types [-sealed] <language file> [dependencies...]")
		os.Exit(1)
	}
	perFile, reg := loadLanguages(o.rest)
	opts := generator.TypeScriptOptions{AssumeSealed: o.bools["-sealed"]}
	for _, l := range perFile[0] {
		os.Stdout.WriteString(generator.TypeScript(l, reg, opts))
	}
}

func runFmt(args []string) {
	if len(args) < 1 {
		logger.Println("Usage: lwdt fmt <input_files...>")
		os.Exit(1)
	}

	for _, file := range args {
		switch strings.ToLower(filepath.Ext(file)) {
		case ".yaml", ".yml":
			logger.Printf("Skipping %s: only JSON chunks are formatted\n", file)
			continue
		}
		doc, err := chunk.ReadFile(file)
		if err != nil {
			logger.Printf("Error parsing %s: %v\n", file, err)
			continue
		}
		if doc.Kind != chunk.KindChunk {
			logger.Printf("Skipping %s: not a chunk\n", file)
			continue
		}

		var buf bytes.Buffer
		if err := formatter.Format(doc.Chunk, &buf); err != nil {
			logger.Printf("Error formatting %s: %v\n", file, err)
			continue
		}
		if err := os.WriteFile(file, buf.Bytes(), 0644); err != nil {
			logger.Printf("Error writing %s: %v\n", file, err)
			continue
		}
		logger.Printf("Formatted %s\n", file)
	}
}

func runBuild(args []string) {
	o := parseArgs("build", args, []string{"-o"}, nil)
	if len(o.rest) < 1 {
		logger.Println("Usage: lwdt build [-o output_file] <input_files...>")
		os.Exit(1)
	}

	output := os.Stdout
	if path := o.values["-o"]; path != "" {
		f, err := os.Create(path)
		if err != nil {
			logger.Fatalf("Error creating output file %s: %v", path, err)
		}
		defer f.Close()
		output = f
	}

	if err := builder.NewBuilder(o.rest).Build(output); err != nil {
		logger.Fatalf("Build failed: %v", err)
	}
}

func runLSP(cfg *config.Config, args []string) {
	o := parseArgs("lsp", args, nil, []string{"-visualize"})
	var languages []*chunk.Chunk
	for _, path := range cfg.Languages {
		doc, err := chunk.ReadFile(path)
		if err != nil || doc.Kind != chunk.KindChunk {
			logger.Printf("Skipping language %s: %v\n", path, err)
			continue
		}
		languages = append(languages, doc.Chunk)
	}

	ctx, cancel := signalContext()
	defer cancel()

	srv := lsp.NewServer(languages, cfg.ValidatorOptions(), version)
	if o.bools["-visualize"] {
		v := visualizer.New(cfg.Visualizer.Port)
		v.Start(ctx)
		srv.SetVisualizer(v)
	}
	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Printf("Language server stopped: %v\n", err)
	}
}

func runHistory(cfg *config.Config, args []string) {
	o := parseArgs("history", args, []string{"-db", "-n", "-run", "-prune"}, nil)
	dbPath := o.values["-db"]
	if dbPath == "" {
		dbPath = cfg.ReportDB
	}
	if dbPath == "" {
		logger.Println("Usage: lwdt history -db path [-n count] [-run id] [-prune keep]")
		os.Exit(1)
	}
	store, err := report.Open(dbPath)
	if err != nil {
		logger.Fatalf("Error opening %s: %v", dbPath, err)
	}
	defer store.Close()
	ctx := context.Background()

	if s, ok := o.values["-prune"]; ok {
		keep, err := strconv.Atoi(s)
		if err != nil {
			logger.Fatalf("Error: invalid count %q", s)
		}
		removed, err := store.Prune(ctx, keep)
		if err != nil {
			logger.Fatalf("Error pruning runs: %v", err)
		}
		logger.Printf("Removed %d runs\n", removed)
		return
	}

	if s, ok := o.values["-run"]; ok {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			logger.Fatalf("Error: invalid run id %q", s)
		}
		issues, err := store.Issues(ctx, id)
		if err != nil {
			logger.Fatalf("Error reading run %d: %v", id, err)
		}
		for _, i := range issues {
			os.Stdout.WriteString(i.String() + "\n")
		}
		return
	}

	limit := 0
	if s, ok := o.values["-n"]; ok {
		if limit, err = strconv.Atoi(s); err != nil {
			logger.Fatalf("Error: invalid count %q", s)
		}
	}
	runs, err := store.Runs(ctx, limit)
	if err != nil {
		logger.Fatalf("Error reading runs: %v", err)
	}
	for _, r := range runs {
		os.Stdout.WriteString(strings.Join([]string{
			"#" + strconv.FormatInt(r.ID, 10),
			r.Time.Local().Format("2006-01-02 15:04:05"),
			r.Model,
			"errors=" + strconv.Itoa(r.Errors),
			"warnings=" + strconv.Itoa(r.Warnings),
		}, "  ") + "\n")
	}
}

func runInit() {
	if err := config.WriteDefault(config.ProjectFile); err != nil {
		logger.Fatalf("Error creating %s: %v", config.ProjectFile, err)
	}
	logger.Printf("Created %s\n", config.ProjectFile)
}
