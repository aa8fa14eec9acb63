// Command gen writes a config template with every key the bot reads.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/brensch/embedbot/config"
	"gopkg.in/yaml.v3"
)

func main() {
	out := flag.String("out", "./config.example.yaml", "where to write the template")
	flag.Parse()

	slog.Info("generating config template", "path", *out)
	confYAML, err := yaml.Marshal(config.Template())
	if err != nil {
		slog.Error("failed to marshal config template", "err", err)
		os.Exit(1)
	}

	err = os.WriteFile(*out, confYAML, 0644)
	if err != nil {
		slog.Error("failed to write config template", "err", err)
		os.Exit(1)
	}
}
