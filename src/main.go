package main

import (
	"flag"
	"log"
	"strings"

	"dataSynth/src/config"

	"github.com/BurntSushi/toml"
)

var (
	operation  = flag.String("op", "create", "create/show/delete, default is create")
	cfgPath    = flag.String("cfg", "", "config path")
	tableNames = flag.String("tables", "", "comma-separated table names, overrides config")
	numRows    = flag.Int("rows", 0, "rows to generate per table, overrides config")
	sizeLimit  = flag.String("limit", "", "max file size (e.g. 50MB), overrides config")
	threads    = flag.Int("threads", 8, "upload threads")
)

func main() {
	flag.Parse()

	var cfg config.Config
	if _, err := toml.DecodeFile(*cfgPath, &cfg); err != nil {
		log.Fatalf("Failed to load config %q: %v", *cfgPath, err)
	}

	if *tableNames != "" {
		cfg.Common.Tables = nil
		for _, name := range strings.Split(*tableNames, ",") {
			cfg.Common.Tables = append(cfg.Common.Tables, strings.TrimSpace(name))
		}
	}
	if *numRows > 0 {
		cfg.Common.Rows = *numRows
	}
	if *sizeLimit != "" {
		cfg.Common.FileSizeLimit = *sizeLimit
	}

	if err := config.Normalize(&cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if err := config.Validate(&cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	switch strings.ToLower(*operation) {
	case "create":
		if err := RunGeneration(&cfg, *threads); err != nil {
			log.Fatalf("Failed to generate data: %v", err)
		}
	case "show":
		if err := ShowFiles(&cfg); err != nil {
			log.Fatalf("Failed to show files: %v", err)
		}
	case "delete":
		if err := DeleteAllFiles(&cfg); err != nil {
			log.Fatalf("Failed to delete files: %v", err)
		}
	default:
		log.Fatalf("Unknown operation: %s", *operation)
	}
}
