package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"fieldforce.com/fieldforce/ai"
	"fieldforce.com/fieldforce/config"
	"fieldforce.com/fieldforce/fieldforce/core"
)

// Sample day used when no rows file is given.
var sampleRows = []core.DigestRow{
	{Name: "Ana", Role: "staff", Branch: "Downtown", Status: "present", CheckIn: "08:55", CheckOut: "17:10"},
	{Name: "Ben", Role: "staff", Branch: "Downtown", Status: "on_field", CheckIn: "09:20"},
	{Name: "Cara", Role: "staff", Branch: "Uptown", Status: "absent"},
}

// Tries the assistant prompts against the configured model.
func main() {
	mode := flag.String("mode", "summary", "summary or advice")
	rowsFile := flag.String("rows", "", "JSON array of digest rows (summary mode)")
	name := flag.String("name", "Ben", "staff name (advice mode)")
	role := flag.String("role", "staff", "staff role (advice mode)")
	location := flag.String("location", "", "current location (advice mode)")
	language := flag.String("lang", "", "answer language, defaults to ai.language")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}
	if cfg.AI.APIKey == "" {
		log.Fatal("ai.apiKey is not set")
	}
	lang := cfg.AI.Language
	if *language != "" {
		lang = *language
	}

	ctx := context.Background()
	assistant := ai.NewAssistant(
		ai.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model, true),
		ai.WithTimeout(cfg.AI.Timeout),
		ai.WithLanguage(lang),
	)

	switch *mode {
	case "summary":
		rows := sampleRows
		if *rowsFile != "" {
			data, err := os.ReadFile(*rowsFile)
			if err != nil {
				log.Fatal(err)
			}
			if err := json.Unmarshal(data, &rows); err != nil {
				log.Fatalf("parse %s: %v", *rowsFile, err)
			}
		}
		insight := assistant.SummarizeAttendance(ctx, rows)
		out, _ := json.MarshalIndent(insight, "", "  ")
		fmt.Println(string(out))
	case "advice":
		fmt.Println(assistant.FieldAdvice(ctx, core.AdviceRequest{Name: *name, Role: *role, Location: *location}))
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}
