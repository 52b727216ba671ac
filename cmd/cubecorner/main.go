package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chazu/cubecorner/internal/run"
	"github.com/chazu/cubecorner/pkg/engine"
	"github.com/chazu/cubecorner/pkg/kernel/sdfx"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	scriptPath := flag.String("script", "", "path to pattern script (Lisp)")
	flag.Parse()

	if (*configPath == "") == (*scriptPath == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -config or -script is required")
		flag.Usage()
		os.Exit(2)
	}

	var cfg *run.Config
	var err error
	switch {
	case *configPath != "":
		cfg, err = run.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	case *scriptPath != "":
		src, readErr := os.ReadFile(*scriptPath)
		if readErr != nil {
			log.Fatalf("read script: %v", readErr)
		}
		var evalErrs []engine.EvalError
		cfg, evalErrs, err = engine.NewEngine().Evaluate(string(src))
		if err != nil {
			log.Fatalf("evaluate script: %v", err)
		}
		if len(evalErrs) > 0 {
			for _, e := range evalErrs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", *scriptPath, e.Error())
			}
			os.Exit(1)
		}
	}

	res, err := run.Run(sdfx.New(), cfg)
	if err != nil {
		log.Fatalf("run: %v", err)
	}

	if res.ExportPath != "" {
		fmt.Printf("wrote %s\n", res.ExportPath)
	} else {
		fmt.Printf("built assembly %q with %d instances (no export configured)\n",
			res.Assembly.Name, res.Assembly.Len())
	}
}
