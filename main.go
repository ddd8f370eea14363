package main

import (
	"flag"
	"log"
	"net/http"

	"wall-planner/coverage"
	"wall-planner/internal/config"
	"wall-planner/internal/maskio"
	"wall-planner/internal/monitoring"
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	maskPath := flag.String("mask", "", "Plan once for this mask image and exit")
	gap := flag.Int("gap", 0, "Grid spacing in pixels (overrides config)")
	allowCaution := flag.Bool("allow-caution", true, "Allow waypoints next to blocked samples")
	outPath := flag.String("out", "plan.geojson", "Output file for -mask mode")
	flag.Parse()

	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		cfg = loaded
	}
	if *gap != 0 {
		cfg.Gap = gap
	}
	if *addr != "" {
		cfg.Addr = addr
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "allow-caution" {
			cfg.AllowCaution = allowCaution
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ invalid configuration: %v", err)
	}

	if *maskPath != "" {
		if err := planOnce(cfg, *maskPath, *outPath); err != nil {
			log.Fatalf("❌ %v", err)
		}
		return
	}

	log.Println("========================================")
	log.Println("🚀 Wall Sweep Planner Server")
	log.Println("========================================")
	log.Printf("Server starting on %s\n", cfg.GetAddr())
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /plan          - Plan a sweep over a wall mask")
	log.Println("  GET  /plans?id=<id> - Fetch a computed plan as GeoJSON")
	log.Println("  GET  /health        - Check server status")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")

	if err := http.ListenAndServe(cfg.GetAddr(), NewServer(cfg).Handler()); err != nil {
		log.Fatal(err)
	}
}

// planOnce plans over a single mask image and saves the result as GeoJSON.
func planOnce(cfg *config.Config, maskPath, outPath string) error {
	img, err := maskio.LoadImage(maskPath)
	if err != nil {
		return err
	}
	mask, err := maskio.Threshold(uint8(cfg.GetMaskThreshold()), false)(img)
	if err != nil {
		return err
	}
	monitoring.Logf("📂 Loaded mask %s: %dx%d, %d surface pixels", maskPath, mask.Width, mask.Height, mask.Area())

	opts := cfg.PlannerOptions()
	opts.Logf = monitoring.Logf
	planner, err := coverage.NewPlanner(opts)
	if err != nil {
		return err
	}
	result, err := planner.Plan(mask, cfg.GetGap(), cfg.GetAllowCaution())
	if err != nil {
		return err
	}
	if result.Insufficient() {
		monitoring.Logf("⚠️  Fewer than two waypoints qualify, saving an empty path")
	}

	if err := coverage.SavePlan(result, outPath); err != nil {
		return err
	}
	monitoring.Logf("✅ Plan saved to %s (%d waypoints, %d path pixels)", outPath, len(result.Waypoints), len(result.Path))
	return nil
}
